// Package similarity scores how strongly a component's activity vector
// correlates with the per-trace error vector. Every coefficient is a pure
// function of the four confusion counts of the two vectors.
package similarity

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the compared vectors differ in length.
var ErrLengthMismatch = errors.New("vectors of different length")

// Counts holds the confusion counts of an activity vector against a
// verdict vector.
type Counts struct {
	M11 int // active in a failing trace
	M10 int // active in a passing trace
	M01 int // inactive in a failing trace
	M00 int // inactive in a passing trace
}

// N returns the vector length.
func (c Counts) N() int { return c.M11 + c.M10 + c.M01 + c.M00 }

// Compare computes the confusion counts of activity against verdict.
func Compare(activity, verdict []bool) (Counts, error) {
	if len(activity) != len(verdict) {
		return Counts{}, fmt.Errorf("compare %d against %d: %w", len(activity), len(verdict), ErrLengthMismatch)
	}
	var c Counts
	for i, a := range activity {
		switch {
		case a && verdict[i]:
			c.M11++
		case a:
			c.M10++
		case verdict[i]:
			c.M01++
		default:
			c.M00++
		}
	}
	return c, nil
}
