package topology

import (
	"fmt"
	"strings"
)

// Options is a set of component flags.
type Options uint8

const (
	// OptLink marks a synthetic invocation edge. Links never fault.
	OptLink Options = 1 << iota

	// OptFatal forces every error reaching the component to manifest as a
	// failure.
	OptFatal
)

// Has reports whether every flag in o is set.
func (opts Options) Has(o Options) bool { return opts&o == o }

// Names returns the flag names in a fixed order.
func (opts Options) Names() []string {
	names := make([]string, 0, 2)
	if opts.Has(OptLink) {
		names = append(names, "link")
	}
	if opts.Has(OptFatal) {
		names = append(names, "fatal")
	}
	return names
}

func (opts Options) String() string {
	return "[" + strings.Join(opts.Names(), ",") + "]"
}

// ParseOption maps "link" or "fatal" (case-insensitive) to its flag.
func ParseOption(s string) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "link":
		return OptLink, nil
	case "fatal":
		return OptFatal, nil
	default:
		return 0, fmt.Errorf("unknown component option %q (valid: link, fatal)", s)
	}
}

// Component is a unit of work or a link in the invocation graph.
//
// Health is the probability that a covered component runs without firing a
// fault. FailureProbability is the probability that an error reaching the
// component is promoted to an observable failure. Components are owned by a
// Topology and must be treated as read-only outside of it.
type Component struct {
	Name               string
	Health             float64
	FailureProbability float64
	Options            Options

	index int
}

// Index returns the component's row in every spectrum matrix.
func (c *Component) Index() int { return c.index }

// IsLink reports whether the component is a synthetic edge.
func (c *Component) IsLink() bool { return c.Options.Has(OptLink) }

// IsFatal reports whether errors through the component always fail.
func (c *Component) IsFatal() bool { return c.Options.Has(OptFatal) }

// Faulty reports whether the component can fire a fault at all. Links never
// fault regardless of their health value.
func (c *Component) Faulty() bool { return !c.IsLink() && c.Health < 1.0 }

// Peer is a weighted downstream relation.
type Peer struct {
	Index  int
	Weight float64
}
