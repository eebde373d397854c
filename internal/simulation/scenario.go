package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/sflsim/internal/topology"
)

// Scenario is a declarative description of a topology together with the
// roots a test execution invokes.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Roots       []string        `yaml:"roots"`
	Mode        Mode            `yaml:"mode,omitempty"`
	Components  []ComponentSpec `yaml:"components"`
	Links       []LinkSpec      `yaml:"links,omitempty"`
	Edges       []EdgeSpec      `yaml:"edges,omitempty"`
}

// ComponentSpec declares a component. Health and Failure are required.
type ComponentSpec struct {
	Name    string   `yaml:"name"`
	Health  *float64 `yaml:"health"`
	Failure *float64 `yaml:"failure"`
	Options []string `yaml:"options,omitempty"`
}

// LinkSpec declares a link. An empty From makes a root link; an empty To
// makes an exit edge.
type LinkSpec struct {
	Name   string  `yaml:"name"`
	From   string  `yaml:"from,omitempty"`
	To     string  `yaml:"to,omitempty"`
	Weight float64 `yaml:"weight"`
}

// EdgeSpec fans an existing link out to another component.
type EdgeSpec struct {
	Link string `yaml:"link"`
	To   string `yaml:"to"`
}

// Validate checks the parts of a scenario that Build cannot: presence of
// required fields and a usable root set.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if len(s.Components) == 0 {
		errs = append(errs, errors.New("at least one component is required"))
	}
	for i, c := range s.Components {
		if c.Health == nil {
			errs = append(errs, fmt.Errorf("component %d (%s): health is required", i, c.Name))
		}
		if c.Failure == nil {
			errs = append(errs, fmt.Errorf("component %d (%s): failure is required", i, c.Name))
		}
	}
	if s.Mode != "" && !s.Mode.Valid() {
		errs = append(errs, fmt.Errorf("invalid mode %q", s.Mode))
	}
	return errors.Join(errs...)
}

// Build validates the scenario and constructs its topology: components
// first, then links, then extra edges, each in declaration order.
func (s *Scenario) Build() (*topology.Topology, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	topo := topology.New()
	for _, c := range s.Components {
		var opts topology.Options
		for _, o := range c.Options {
			flag, err := topology.ParseOption(o)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: component %s: %w", s.Name, c.Name, err)
			}
			opts |= flag
		}
		if _, err := topo.AddComponent(c.Name, *c.Health, *c.Failure, opts); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	for _, l := range s.Links {
		if _, err := topo.AddLink(l.Name, l.From, l.To, l.Weight); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	for _, e := range s.Edges {
		if err := topo.AddExtraEdge(e.Link, e.To); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	if len(s.Roots) == 0 {
		return nil, fmt.Errorf("scenario %s: no roots", s.Name)
	}
	for _, r := range s.Roots {
		if _, err := topo.Lookup(r); err != nil {
			return nil, fmt.Errorf("scenario %s: root: %w", s.Name, err)
		}
	}
	return topo, nil
}
