package trace

// Verdict is the binary test outcome of a trace.
type Verdict int

const (
	Pass Verdict = iota
	Fail
)

// String returns "pass" or "fail".
func (v Verdict) String() string {
	if v == Fail {
		return "fail"
	}
	return "pass"
}

// Match selects how component predicates treat a component that was invoked
// more than once in a single trace.
type Match int

const (
	// MatchFirst consults only the first invocation in pre-order across the
	// roots in activation order.
	MatchFirst Match = iota

	// MatchAny ORs the bit across every invocation.
	MatchAny
)

// Trace is one test execution: an ordered forest of root invocations.
// A Trace is not modified after construction.
type Trace struct {
	roots []*Node
}

// New builds a trace over the given roots. The slice is copied.
func New(roots ...*Node) *Trace {
	r := make([]*Node, len(roots))
	copy(r, roots)
	return &Trace{roots: r}
}

// Roots returns the root invocations in activation order.
func (t *Trace) Roots() []*Node {
	out := make([]*Node, len(t.roots))
	copy(out, t.roots)
	return out
}

// Len returns the number of roots.
func (t *Trace) Len() int { return len(t.roots) }

// Walk visits every node of every root in pre-order. Returning false from fn
// stops the walk.
func (t *Trace) Walk(fn func(*Node) bool) {
	for _, r := range t.roots {
		if !r.Walk(fn) {
			return
		}
	}
}

func (t *Trace) any(pred func(*Node) bool) bool {
	found := false
	t.Walk(func(n *Node) bool {
		if pred(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasFault reports whether any node of the trace faulted.
func (t *Trace) HasFault() bool { return t.any(Fault) }

// HasError reports whether any node of the trace carries an error.
func (t *Trace) HasError() bool { return t.any(Error) }

// HasFailure reports whether any node of the trace failed.
func (t *Trace) HasFailure() bool { return t.any(Failure) }

// Failing reports whether a latent fault fired anywhere in the trace. The
// verdict is defined on faults, not failures: a fault that never escalated
// still counts as a failing run.
func (t *Trace) Failing() bool { return t.HasFault() }

// Passing is the negation of Failing.
func (t *Trace) Passing() bool { return !t.Failing() }

// Verdict returns Fail for failing traces and Pass otherwise.
func (t *Trace) Verdict() Verdict {
	if t.Failing() {
		return Fail
	}
	return Pass
}

// Covers reports whether the component was invoked under any root.
func (t *Trace) Covers(component string) bool {
	return t.Find(component) != nil
}

// Count returns the number of invocations of the component across the forest.
func (t *Trace) Count(component string) int {
	count := 0
	for _, r := range t.roots {
		count += r.Count(component)
	}
	return count
}

// Find returns the first invocation of the component, searching roots in
// activation order.
func (t *Trace) Find(component string) *Node {
	var match *Node
	t.Walk(func(n *Node) bool {
		if n.Component == component {
			match = n
			return false
		}
		return true
	})
	return match
}

// ComponentFaulted reports the fault bit of the first invocation.
func (t *Trace) ComponentFaulted(component string) bool {
	return t.ComponentBit(component, MatchFirst, Fault)
}

// ComponentErrored reports the error bit of the first invocation.
func (t *Trace) ComponentErrored(component string) bool {
	return t.ComponentBit(component, MatchFirst, Error)
}

// ComponentFailed reports the failure bit of the first invocation.
func (t *Trace) ComponentFailed(component string) bool {
	return t.ComponentBit(component, MatchFirst, Failure)
}

// ComponentBit evaluates bit on the invocations of component selected by m.
func (t *Trace) ComponentBit(component string, m Match, bit func(*Node) bool) bool {
	if m == MatchFirst {
		n := t.Find(component)
		return n != nil && bit(n)
	}
	return t.any(func(n *Node) bool {
		return n.Component == component && bit(n)
	})
}

// Fault, Error and Failure are bit selectors for ComponentBit.
func Fault(n *Node) bool   { return n.Fault }
func Error(n *Node) bool   { return n.Error }
func Failure(n *Node) bool { return n.Failure }
