package ranking

import (
	"fmt"
	"sort"

	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
)

// TableOptions configures a diagnosis table.
type TableOptions struct {
	IncludeLinks bool

	// SortBy names the column to sort by, descending. Empty keeps component
	// order.
	SortBy string
}

// Row is one component's scores, in the order the coefficients were
// requested.
type Row struct {
	Component *topology.Component
	Scores    []float64
}

// Table holds the scores of several coefficients for every component.
type Table struct {
	Coefficients []string
	Rows         []Row
}

// Column returns the index of the named coefficient, or -1.
func (t *Table) Column(name string) int {
	want, err := similarity.Lookup(name)
	if err != nil {
		return -1
	}
	for i, n := range t.Coefficients {
		if n == want.Name {
			return i
		}
	}
	return -1
}

// NewTable scores every component of s under each named coefficient.
func NewTable(s *spectrum.Spectrum, names []string, opts TableOptions) (*Table, error) {
	coefs := make([]similarity.Coefficient, 0, len(names))
	table := &Table{}
	for _, name := range names {
		co, err := similarity.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("diagnosis table: %w", err)
		}
		coefs = append(coefs, co)
		table.Coefficients = append(table.Coefficients, co.Name)
	}

	verdict := s.ErrorVector()
	for i, c := range s.Components() {
		if c.IsLink() && !opts.IncludeLinks {
			continue
		}
		counts, err := similarity.Compare(s.Activity.Row(i), verdict)
		if err != nil {
			return nil, fmt.Errorf("diagnosis table %s: %w", c.Name, err)
		}
		row := Row{Component: c, Scores: make([]float64, len(coefs))}
		for j, co := range coefs {
			row.Scores[j] = co.Score(counts)
		}
		table.Rows = append(table.Rows, row)
	}

	if opts.SortBy != "" {
		col := table.Column(opts.SortBy)
		if col < 0 {
			return nil, fmt.Errorf("diagnosis table: sort column %q not requested", opts.SortBy)
		}
		sort.SliceStable(table.Rows, func(i, j int) bool {
			return table.Rows[i].Scores[col] > table.Rows[j].Scores[col]
		})
	}
	return table, nil
}
