// Package spectrum compresses a topology's trace history into binary
// program spectra: per-component activity, fault, error and failure rows
// over the traces, plus the per-trace error vector used as the localization
// ground truth.
package spectrum

import (
	"fmt"

	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// Options controls extraction.
type Options struct {
	// Match selects how the fault/error/failure bits of a component invoked
	// several times in one trace are attributed. The zero value consults the
	// first invocation only.
	Match trace.Match
}

// Spectrum holds the four matrices and the error vector of a topology.
// Rows follow the topology's component order and columns its trace order,
// both as they were at extraction time.
type Spectrum struct {
	topo       *topology.Topology
	components []*topology.Component
	opts       Options
	errors     []bool
	Activity   *Matrix
	Fault      *Matrix
	Error      *Matrix
	Failure    *Matrix
}

// Extract builds the spectra of t in a single pass over its traces. The
// spectrum keeps its own copy of the trace history and component list, so
// later activations or components added to t do not change it.
func Extract(t *topology.Topology, opts Options) *Spectrum {
	view := t.WithTraces(t.Traces())
	comps := view.Components()
	n := len(comps)
	s := &Spectrum{
		topo:       view,
		components: comps,
		opts:       opts,
		errors:     make([]bool, 0, view.TraceCount()),
		Activity:   NewMatrix(n),
		Fault:      NewMatrix(n),
		Error:      NewMatrix(n),
		Failure:    NewMatrix(n),
	}

	for _, tr := range view.Traces() {
		act := make([]bool, n)
		flt := make([]bool, n)
		errc := make([]bool, n)
		fail := make([]bool, n)
		for i, c := range comps {
			if !tr.Covers(c.Name) {
				continue
			}
			act[i] = true
			flt[i] = tr.ComponentBit(c.Name, opts.Match, trace.Fault)
			errc[i] = tr.ComponentBit(c.Name, opts.Match, trace.Error)
			fail[i] = tr.ComponentBit(c.Name, opts.Match, trace.Failure)
		}
		s.Activity.appendColumn(act)
		s.Fault.appendColumn(flt)
		s.Error.appendColumn(errc)
		s.Failure.appendColumn(fail)
		s.errors = append(s.errors, tr.Failing())
	}
	return s
}

// Topology returns a view of the topology holding exactly the traces the
// spectrum was extracted from. The component graph is shared with the
// source topology; use Components for the matrix rows.
func (s *Spectrum) Topology() *topology.Topology { return s.topo }

// Components returns the components backing the matrix rows, in row order.
func (s *Spectrum) Components() []*topology.Component {
	out := make([]*topology.Component, len(s.components))
	copy(out, s.components)
	return out
}

// Traces returns the number of traces (columns).
func (s *Spectrum) Traces() int { return len(s.errors) }

// ErrorVector returns the per-trace verdicts: true for failing traces.
func (s *Spectrum) ErrorVector() []bool {
	out := make([]bool, len(s.errors))
	copy(out, s.errors)
	return out
}

// FailingIndices returns the column indices of failing traces.
func (s *Spectrum) FailingIndices() []int {
	var idx []int
	for i, e := range s.errors {
		if e {
			idx = append(idx, i)
		}
	}
	return idx
}

// Frequency returns the total number of invocations of component i across
// the spectrum's traces, counting repeats within a trace. Components added
// after extraction have frequency 0.
func (s *Spectrum) Frequency(i int) int {
	if i < 0 || i >= len(s.components) {
		return 0
	}
	name := s.components[i].Name
	total := 0
	for _, tr := range s.topo.Traces() {
		total += tr.Count(name)
	}
	return total
}

// UniqueFailing keeps the first trace, every failing trace, and every
// passing trace whose activity column differs from all columns kept so far.
// The result shares the component graph and is re-extracted with the same
// options.
func (s *Spectrum) UniqueFailing() *Spectrum {
	if len(s.errors) == 0 {
		return s.restrict(nil)
	}
	keep := []int{0}
	for i := 1; i < len(s.errors); i++ {
		if s.errors[i] {
			keep = append(keep, i)
			continue
		}
		unique := true
		for _, k := range keep {
			if s.Activity.ColumnsEqual(i, k) {
				unique = false
				break
			}
		}
		if unique {
			keep = append(keep, i)
		}
	}
	return s.restrict(keep)
}

// SimilarFailing keeps every failing trace and every trace whose activity
// column scores within [lower, upper] against at least one failing trace's
// column under the named coefficient. Original order is preserved.
func (s *Spectrum) SimilarFailing(coefficient string, lower, upper float64) (*Spectrum, error) {
	coef, err := similarity.Lookup(coefficient)
	if err != nil {
		return nil, fmt.Errorf("similar failing: %w", err)
	}
	failing := s.FailingIndices()
	var keep []int
	for i := range s.errors {
		if s.errors[i] {
			keep = append(keep, i)
			continue
		}
		col := s.Activity.Column(i)
		for _, f := range failing {
			counts, err := similarity.Compare(col, s.Activity.Column(f))
			if err != nil {
				return nil, fmt.Errorf("similar failing: trace %d: %w", i, err)
			}
			if v := coef.Score(counts); v >= lower && v <= upper {
				keep = append(keep, i)
				break
			}
		}
	}
	return s.restrict(keep), nil
}

func (s *Spectrum) restrict(keep []int) *Spectrum {
	traces := make([]*trace.Trace, 0, len(keep))
	for _, k := range keep {
		traces = append(traces, s.topo.Trace(k))
	}
	return Extract(s.topo.WithTraces(traces), s.opts)
}
