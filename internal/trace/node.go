// Package trace holds the execution records produced by the activation
// engine. A Trace is a forest of Nodes, one tree per activated root, and
// every predicate over it is answered by an iterative pre-order walk so that
// arbitrarily deep invocation chains never grow the goroutine stack.
package trace

// Node is one simulated invocation of one component.
//
// Fault records that the component's own latent defect fired. Error is set
// when the node faulted or its parent already carried an error. Failure marks
// an error that was promoted to an observable failure; a failing node never
// has children.
type Node struct {
	Component string
	Fault     bool
	Error     bool
	Failure   bool
	Children  []*Node
}

// NewNode creates a childless node for the named component.
func NewNode(component string) *Node {
	return &Node{Component: component}
}

// Add appends a downstream invocation.
func (n *Node) Add(child *Node) {
	n.Children = append(n.Children, child)
}

// Walk visits n and its descendants in pre-order (parent before children,
// children in invocation order). Returning false from fn stops the walk.
// Walk reports whether the walk ran to completion.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			return false
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return true
}

// any reports whether pred holds for some node in the subtree.
func (n *Node) any(pred func(*Node) bool) bool {
	found := false
	n.Walk(func(cur *Node) bool {
		if pred(cur) {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasFault reports whether any node in the subtree faulted.
func (n *Node) HasFault() bool { return n.any(func(c *Node) bool { return c.Fault }) }

// HasError reports whether any node in the subtree carries an error.
func (n *Node) HasError() bool { return n.any(func(c *Node) bool { return c.Error }) }

// HasFailure reports whether any node in the subtree failed.
func (n *Node) HasFailure() bool { return n.any(func(c *Node) bool { return c.Failure }) }

// Covers reports whether the component was invoked anywhere in the subtree.
func (n *Node) Covers(component string) bool {
	return n.Find(component) != nil
}

// Count returns the number of invocations of the component in the subtree.
func (n *Node) Count(component string) int {
	count := 0
	n.Walk(func(cur *Node) bool {
		if cur.Component == component {
			count++
		}
		return true
	})
	return count
}

// Find returns the first invocation of the component in pre-order, or nil.
func (n *Node) Find(component string) *Node {
	var match *Node
	n.Walk(func(cur *Node) bool {
		if cur.Component == component {
			match = cur
			return false
		}
		return true
	})
	return match
}

// ComponentFaulted reports the fault bit of the first invocation of the
// component. Later invocations are not consulted.
func (n *Node) ComponentFaulted(component string) bool {
	m := n.Find(component)
	return m != nil && m.Fault
}

// ComponentErrored reports the error bit of the first invocation.
func (n *Node) ComponentErrored(component string) bool {
	m := n.Find(component)
	return m != nil && m.Error
}

// ComponentFailed reports the failure bit of the first invocation.
func (n *Node) ComponentFailed(component string) bool {
	m := n.Find(component)
	return m != nil && m.Failure
}
