package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownCoefficient is returned when a coefficient name is not registered.
var ErrUnknownCoefficient = errors.New("unknown coefficient")

// Family groups coefficients by what they measure.
type Family string

const (
	FamilyCount      Family = "count"
	FamilyDistance   Family = "distance"
	FamilySimilarity Family = "similarity"
)

// Coefficient is a named scoring formula over confusion counts.
type Coefficient struct {
	Name        string
	Family      Family
	Recommended bool
	formula     func(c Counts) float64
}

// Score evaluates the coefficient, rounded to three decimals. Undefined
// results (division by zero, NaN, infinities) score 0.
func (co Coefficient) Score(c Counts) float64 {
	return round3(co.formula(c))
}

// Compute compares the two vectors and scores them.
func (co Coefficient) Compute(activity, verdict []bool) (float64, error) {
	c, err := Compare(activity, verdict)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", co.Name, err)
	}
	return co.Score(c), nil
}

func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// sigmas returns the Goodman-Kruskal sums shared by goodman and anderbg.
func sigmas(c Counts) (sig1, sig0 float64) {
	s1 := maxInt(c.M11, c.M10) + maxInt(c.M01, c.M00) + maxInt(c.M10, c.M00)
	s0 := maxInt(c.M11+c.M01, c.M10+c.M00) + maxInt(c.M11+c.M10, c.M01+c.M00)
	return float64(s1), float64(s0)
}

// f converts the counts to floats.
func f(c Counts) (m11, m10, m01, m00, n float64) {
	return float64(c.M11), float64(c.M10), float64(c.M01), float64(c.M00), float64(c.N())
}

var coefficients = []Coefficient{
	// Raw counts.
	{Name: "fail", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M11) }},
	{Name: "pass", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M10) }},
	{Name: "nofail", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M01) }},
	{Name: "nopass", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M00) }},
	{Name: "exonerPassed", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M10 + 1) }},
	{Name: "exonerFailed", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M01 + 1) }},
	{Name: "usage", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, _, _, n := f(c)
		return (m11 + m10) / n
	}},

	// Distances.
	{Name: "hamming", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		return float64(c.M10 + c.M01)
	}},
	{Name: "meanham", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		_, m10, m01, _, n := f(c)
		return (m10 + m01) / n
	}},
	{Name: "euclid", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		return math.Sqrt(float64(c.M10 + c.M01))
	}},
	{Name: "euclid2", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		d := float64(c.M10 + c.M01)
		return math.Sqrt(d * d)
	}},
	{Name: "vari", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		_, m10, m01, _, n := f(c)
		return (m10 + m01) / (4 * n)
	}},
	{Name: "sizdif", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		_, m10, m01, _, n := f(c)
		return (m10 + m01) * (m10 + m01) / (n * n)
	}},
	{Name: "shpdif", Family: FamilyDistance, formula: func(c Counts) float64 {
		_, m10, m01, _, n := f(c)
		return (n*(m10+m01) - (m10-m01)*(m10-m01)) / (n * n)
	}},
	{Name: "patdif", Family: FamilyDistance, formula: func(c Counts) float64 {
		_, m10, m01, _, n := f(c)
		return 4 * m10 * m01 / (n * n)
	}},
	{Name: "lance", Family: FamilyDistance, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return (m10 + m01) / (2*m11 + m10 + m01)
	}},
	{Name: "chord", Family: FamilyDistance, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return math.Sqrt(2 * (1 - m11/math.Sqrt((m11+m10)*(m11+m01))))
	}},

	// Similarities without negative matches.
	{Name: "ochiai", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return m11 / math.Sqrt((m11+m10)*(m11+m01))
	}},
	{Name: "cos", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return m11 / math.Sqrt((m11+m10)*(m11+m01)*(m11+m01))
	}},
	{Name: "jaccard", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return m11 / (m01 + m10 + m11)
	}},
	{Name: "w3jaccard", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return 3 * m11 / (3*m11 + m10 + m01)
	}},
	{Name: "forbesi", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, n := f(c)
		return n * m11 / ((m11 + m10) * (m11 + m01))
	}},
	{Name: "fossum", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, n := f(c)
		return n * (m11 - 0.5) * (m11 - 0.5) / ((m11 + m10) * (m11 + m01))
	}},
	{Name: "sorgfrei", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return m11 * m11 / ((m11 + m10) * (m11 + m01))
	}},
	{Name: "tarwid", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, n := f(c)
		p := (m11 + m10) * (m11 + m01)
		return (n*m11 - p) / (n*m11 + p)
	}},
	{Name: "dice", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return 2 * m11 / (2*m11 + m10 + m01)
	}},
	{Name: "neili", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return 2 * m11 / (m11 + m10 + m11 + m01)
	}},
	{Name: "sokal1", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, _, _ := f(c)
		return m11 / (m11 + 2*m10 + m01)
	}},

	// Similarities with negative matches.
	{Name: "ochiai2", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		return m11 * m00 / math.Sqrt((m11+m10)*(m11+m01)*(m10+m00)*(m01+m00))
	}},
	{Name: "ample", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		return math.Abs(m11/(m01+m11) - m10/(m00+m10))
	}},
	{Name: "tarantula", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		failed := m11 / (m11 + m01)
		passed := m10 / (m10 + m00)
		return failed / (failed + passed)
	}},
	{Name: "sokalm", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, _, _, m00, n := f(c)
		return (m11 + m00) / n
	}},
	{Name: "sokal2", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		return 2 * (m11 + m00) / (2*m11 + m10 + m01 + 2*m00)
	}},
	{Name: "tanimoto", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		return (m11 + m00) / (m11 + 2*(m10+m01) + m00)
	}},
	{Name: "faith", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, _, _, m00, n := f(c)
		return (m11 + 0.5*m00) / n
	}},
	{Name: "gower", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, m10, m01, m00, _ := f(c)
		return (m11 + 0.5*m00) / (m11 + 0.5*(m10+m01) + m00)
	}},
	{Name: "innerprod", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, _, _, m00, _ := f(c)
		return 1 / (m11 + m00)
	}},
	{Name: "russell", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		m11, _, _, _, n := f(c)
		return m11 / n
	}},
	{Name: "stiles", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		n := c.N()
		// N/2 truncates.
		k := float64(absInt(c.M11*c.M00-c.M10*c.M01) - n/2)
		m11, m10, m01, m00, fn := f(c)
		return math.Log10(fn * k * k / ((m11 + m10) * (m11 + m01) * (m10 + m00) * (m01 + m00)))
	}},
	{Name: "goodman", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		sig1, sig0 := sigmas(c)
		return (sig1 - sig0) / (2*float64(c.N()) - sig0)
	}},
	{Name: "anderbg", Family: FamilySimilarity, Recommended: true, formula: func(c Counts) float64 {
		sig1, sig0 := sigmas(c)
		return (sig1 - sig0) / (2 * float64(c.N()))
	}},

	// Normalized counts.
	{Name: "a", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M11) / float64(c.N()) }},
	{Name: "b", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M10) / float64(c.N()) }},
	{Name: "c", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M01) / float64(c.N()) }},
	{Name: "d", Family: FamilyCount, Recommended: true, formula: func(c Counts) float64 { return float64(c.M00) / float64(c.N()) }},
}

var byName = func() map[string]Coefficient {
	m := make(map[string]Coefficient, len(coefficients)*2)
	for _, co := range coefficients {
		m[normalize(co.Name)] = co
	}
	return m
}()

// normalize folds case and drops underscores and dashes, so "exoner_passed"
// and "exonerPassed" resolve to the same coefficient.
func normalize(name string) string {
	r := strings.NewReplacer("_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

// Lookup returns the coefficient registered under name.
func Lookup(name string) (Coefficient, error) {
	co, ok := byName[normalize(name)]
	if !ok {
		return Coefficient{}, fmt.Errorf("%w: %q", ErrUnknownCoefficient, name)
	}
	return co, nil
}

// Score compares the two vectors and scores them under the named
// coefficient.
func Score(name string, activity, verdict []bool) (float64, error) {
	co, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return co.Compute(activity, verdict)
}

// All returns every registered coefficient in registration order.
func All() []Coefficient {
	out := make([]Coefficient, len(coefficients))
	copy(out, coefficients)
	return out
}

// Names returns the registered names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(coefficients))
	for _, co := range coefficients {
		names = append(names, co.Name)
	}
	sort.Strings(names)
	return names
}
