// Package topology models the probabilistic invocation graph: components,
// the link components that stand for weighted invocation edges, and the
// history of traces simulated over them.
//
// Components live in an arena ordered by insertion; that order is the row
// order of every spectrum matrix. Names resolve through an index map, and
// peers are kept as an adjacency list of arena indices rather than pointers.
package topology

import (
	"github.com/nvandessel/sflsim/internal/trace"
)

// None is the sentinel for an absent endpoint in AddLink.
const None = ""

// graph is shared by every Topology view derived from the same build.
type graph struct {
	components []*Component
	index      map[string]int
	peers      [][]Peer
}

// Topology owns a component graph and an append-only trace history.
type Topology struct {
	g      *graph
	traces []*trace.Trace
}

// New creates an empty topology.
func New() *Topology {
	return &Topology{
		g: &graph{index: make(map[string]int)},
	}
}

// WithTraces returns a view that shares this topology's components and peers
// but carries its own trace history. The traces slice is copied.
func (t *Topology) WithTraces(traces []*trace.Trace) *Topology {
	ts := make([]*trace.Trace, len(traces))
	copy(ts, traces)
	return &Topology{g: t.g, traces: ts}
}

// AddComponent appends a component. Names must be unique and probabilities
// must lie in [0, 1].
func (t *Topology) AddComponent(name string, health, failureProbability float64, opts Options) (*Component, error) {
	if name == None {
		return nil, &Error{Kind: ErrEmptyName, Name: name}
	}
	if _, exists := t.g.index[name]; exists {
		return nil, &Error{Kind: ErrDuplicateName, Name: name}
	}
	if !validProbability(health) {
		return nil, invalidProbability(name, "health", health)
	}
	if !validProbability(failureProbability) {
		return nil, invalidProbability(name, "failure", failureProbability)
	}

	c := &Component{
		Name:               name,
		Health:             health,
		FailureProbability: failureProbability,
		Options:            opts,
		index:              len(t.g.components),
	}
	t.g.components = append(t.g.components, c)
	t.g.peers = append(t.g.peers, nil)
	t.g.index[name] = c.index
	return c, nil
}

// AddLink creates a link component carrying the invocation probability
// weight, makes it a peer of from with that weight, and makes to its own
// peer with weight 1.0.
//
// from may be None: the link then has no upstream and is meant to be
// activated directly as a root. to may be None for a dangling exit edge.
func (t *Topology) AddLink(name, from, to string, weight float64) (*Component, error) {
	if !validProbability(weight) {
		return nil, invalidProbability(name, "weight", weight)
	}

	fromIdx, toIdx := -1, -1
	if from != None {
		i, ok := t.g.index[from]
		if !ok {
			return nil, unknown(from)
		}
		fromIdx = i
	}
	if to != None {
		i, ok := t.g.index[to]
		if !ok {
			return nil, unknown(to)
		}
		toIdx = i
	}

	link, err := t.AddComponent(name, weight, 0.0, OptLink)
	if err != nil {
		return nil, err
	}
	if fromIdx >= 0 {
		t.setPeer(fromIdx, link.index, weight)
	}
	if toIdx >= 0 {
		t.setPeer(link.index, toIdx, 1.0)
	}
	return link, nil
}

// AddExtraEdge fans an existing link out to an additional target with
// weight 1.0.
func (t *Topology) AddExtraEdge(linkName, to string) error {
	li, ok := t.g.index[linkName]
	if !ok {
		return unknown(linkName)
	}
	if !t.g.components[li].IsLink() {
		return &Error{Kind: ErrNotALink, Name: linkName}
	}
	ti, ok := t.g.index[to]
	if !ok {
		return unknown(to)
	}
	t.setPeer(li, ti, 1.0)
	return nil
}

// setPeer adds a peer or, if the target is already a peer, replaces its
// weight in place so that draw order stays stable.
func (t *Topology) setPeer(from, to int, weight float64) {
	peers := t.g.peers[from]
	for i := range peers {
		if peers[i].Index == to {
			peers[i].Weight = weight
			return
		}
	}
	t.g.peers[from] = append(peers, Peer{Index: to, Weight: weight})
}

// Len returns the number of components.
func (t *Topology) Len() int { return len(t.g.components) }

// Components returns the components in insertion order.
func (t *Topology) Components() []*Component {
	out := make([]*Component, len(t.g.components))
	copy(out, t.g.components)
	return out
}

// Component returns the component at index i.
func (t *Topology) Component(i int) *Component { return t.g.components[i] }

// Lookup resolves a component by name.
func (t *Topology) Lookup(name string) (*Component, error) {
	i, ok := t.g.index[name]
	if !ok {
		return nil, unknown(name)
	}
	return t.g.components[i], nil
}

// Peers returns the downstream relations of the component at index i in the
// order they were added.
func (t *Topology) Peers(i int) []Peer {
	out := make([]Peer, len(t.g.peers[i]))
	copy(out, t.g.peers[i])
	return out
}

// AppendTrace records a simulated trace.
func (t *Topology) AppendTrace(tr *trace.Trace) {
	t.traces = append(t.traces, tr)
}

// Traces returns the trace history in append order.
func (t *Topology) Traces() []*trace.Trace {
	out := make([]*trace.Trace, len(t.traces))
	copy(out, t.traces)
	return out
}

// TraceCount returns the number of recorded traces.
func (t *Topology) TraceCount() int { return len(t.traces) }

// Trace returns the trace at index i.
func (t *Topology) Trace(i int) *trace.Trace { return t.traces[i] }

func validProbability(p float64) bool {
	return p >= 0 && p <= 1
}
