// Package ranking turns a spectrum into a diagnosis: components ordered by
// how suspicious a similarity coefficient finds their activity row against
// the error vector.
package ranking

import (
	"fmt"
	"sort"

	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
)

// Options configures a ranking.
type Options struct {
	// IncludeLinks keeps link components in the result.
	IncludeLinks bool
}

// ScoredComponent is a component with its suspiciousness score.
type ScoredComponent struct {
	Component *topology.Component
	Score     float64

	// Counts are the confusion counts the score was computed from.
	Counts similarity.Counts
}

// Rank scores every component under the named coefficient and returns them
// sorted by descending score. Ties keep component order.
func Rank(s *spectrum.Spectrum, coefficient string, opts Options) ([]ScoredComponent, error) {
	co, err := similarity.Lookup(coefficient)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	verdict := s.ErrorVector()
	comps := s.Components()

	ranked := make([]ScoredComponent, 0, len(comps))
	for i, c := range comps {
		if c.IsLink() && !opts.IncludeLinks {
			continue
		}
		counts, err := similarity.Compare(s.Activity.Row(i), verdict)
		if err != nil {
			return nil, fmt.Errorf("rank %s: %w", c.Name, err)
		}
		ranked = append(ranked, ScoredComponent{
			Component: c,
			Score:     co.Score(counts),
			Counts:    counts,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}
