package simulation

import (
	"testing"

	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// AssertPropagation asserts the per-node propagation rules over every trace
// in the topology's history: links never fault, fatal components fail on
// any error, failed nodes have no children, and an error without a local
// fault is inherited from the parent.
func AssertPropagation(t testing.TB, topo *topology.Topology) {
	t.Helper()
	for ti, tr := range topo.Traces() {
		for _, root := range tr.Roots() {
			if root.Error && !root.Fault {
				t.Errorf("AssertPropagation: trace %d: root %s errored without a fault", ti, root.Component)
			}
			assertSubtree(t, topo, ti, root)
		}
	}
}

func assertSubtree(t testing.TB, topo *topology.Topology, ti int, root *trace.Node) {
	t.Helper()
	root.Walk(func(n *trace.Node) bool {
		c, err := topo.Lookup(n.Component)
		if err != nil {
			t.Errorf("AssertPropagation: trace %d: %v", ti, err)
			return true
		}
		if c.IsLink() && n.Fault {
			t.Errorf("AssertPropagation: trace %d: link %s faulted", ti, c.Name)
		}
		if c.IsFatal() && n.Error && !n.Failure {
			t.Errorf("AssertPropagation: trace %d: fatal %s errored without failing", ti, c.Name)
		}
		if n.Failure && len(n.Children) > 0 {
			t.Errorf("AssertPropagation: trace %d: failed %s has %d children", ti, c.Name, len(n.Children))
		}
		for _, child := range n.Children {
			if child.Error && !child.Fault && !n.Error {
				t.Errorf("AssertPropagation: trace %d: %s inherited an error %s did not carry", ti, child.Component, c.Name)
			}
		}
		return true
	})
}

// AssertCoverage asserts that every fault, error or failure bit in the
// spectrum is set on a covered component.
func AssertCoverage(t testing.TB, s *spectrum.Spectrum) {
	t.Helper()
	for r := 0; r < s.Activity.Rows(); r++ {
		for c := 0; c < s.Activity.Cols(); c++ {
			if s.Activity.At(r, c) {
				continue
			}
			if s.Fault.At(r, c) || s.Error.At(r, c) || s.Failure.At(r, c) {
				t.Errorf("AssertCoverage: component %d trace %d has state bits without activity", r, c)
			}
		}
	}
}

// CountFailing returns how many traces in the history are failing.
func CountFailing(topo *topology.Topology) int {
	n := 0
	for _, tr := range topo.Traces() {
		if tr.Failing() {
			n++
		}
	}
	return n
}
