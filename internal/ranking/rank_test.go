package ranking

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/sflsim/internal/activation"
	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// fixture builds A(healthy), B(faulty), L0: A -> B with five traces, the
// first two failing in B.
func fixture(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	topo := topology.New()
	if _, err := topo.AddComponent("A", 1.0, 1.0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := topo.AddComponent("B", 0.5, 1.0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := topo.AddLink("L0", "A", "B", 1.0); err != nil {
		t.Fatal(err)
	}

	call := func(fault bool) *trace.Trace {
		a, l, b := trace.NewNode("A"), trace.NewNode("L0"), trace.NewNode("B")
		b.Fault, b.Error = fault, fault
		l.Add(b)
		a.Add(l)
		return trace.New(a)
	}
	topo.AppendTrace(call(true))
	topo.AppendTrace(call(true))
	topo.AppendTrace(trace.New(trace.NewNode("A")))
	topo.AppendTrace(trace.New(trace.NewNode("A")))
	topo.AppendTrace(call(false))
	return spectrum.Extract(topo, spectrum.Options{})
}

type entry struct {
	Name  string
	Score float64
}

func entries(ranked []ScoredComponent) []entry {
	out := make([]entry, len(ranked))
	for i, sc := range ranked {
		out[i] = entry{sc.Component.Name, sc.Score}
	}
	return out
}

func TestRank(t *testing.T) {
	s := fixture(t)

	tests := []struct {
		name string
		opts Options
		want []entry
	}{
		{"components only", Options{}, []entry{{"B", 0.816}, {"A", 0.632}}},
		{"with links", Options{IncludeLinks: true}, []entry{{"B", 0.816}, {"L0", 0.816}, {"A", 0.632}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rank(s, "ochiai", tt.opts)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, entries(got)); diff != "" {
				t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRank_Counts(t *testing.T) {
	got, err := Rank(fixture(t), "ochiai", Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := similarity.Counts{M11: 2, M10: 1, M01: 0, M00: 2}
	if got[0].Counts != want {
		t.Errorf("B counts = %+v, want %+v", got[0].Counts, want)
	}
}

func TestRank_TiesKeepComponentOrder(t *testing.T) {
	got, err := Rank(fixture(t), "fail", Options{IncludeLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []entry{{"A", 2}, {"B", 2}, {"L0", 2}}
	if diff := cmp.Diff(want, entries(got)); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_Deterministic(t *testing.T) {
	s := fixture(t)
	first, err := Rank(s, "ochiai", Options{IncludeLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Rank(s, "ochiai", Options{IncludeLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(entries(first), entries(second)); diff != "" {
		t.Errorf("repeated Rank() differs:\n%s", diff)
	}
}

func TestRank_UnknownCoefficient(t *testing.T) {
	_, err := Rank(fixture(t), "bogus", Options{})
	if !errors.Is(err, similarity.ErrUnknownCoefficient) {
		t.Errorf("Rank() error = %v, want ErrUnknownCoefficient", err)
	}
}

func TestRank_HealthyComponents(t *testing.T) {
	topo := topology.New()
	for _, name := range []string{"A", "B"} {
		if _, err := topo.AddComponent(name, 1.0, 1.0, 0); err != nil {
			t.Fatal(err)
		}
	}
	eng := activation.NewEngine(topo, rand.New(rand.NewSource(11)), activation.DefaultConfig())
	for _, root := range []string{"A", "B"} {
		if _, err := eng.ActivateMany([]string{root}, 20, nil); err != nil {
			t.Fatal(err)
		}
	}

	got, err := Rank(spectrum.Extract(topo, spectrum.Options{}), "ochiai", Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []entry{{"A", 0}, {"B", 0}}
	if diff := cmp.Diff(want, entries(got)); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
	if ev := Evaluate(got); ev.Found {
		t.Errorf("Evaluate() found a fault among healthy components: %+v", ev)
	}
}

func TestEvaluate(t *testing.T) {
	s := fixture(t)

	tests := []struct {
		name string
		opts Options
		want Evaluation
	}{
		{"components only", Options{}, Evaluation{Faulty: 1, Found: true, Best: "B", BestRank: 1, Exam: 0.5}},
		{"tied link counted first", Options{IncludeLinks: true}, Evaluation{Faulty: 1, Found: true, Best: "B", BestRank: 2, Exam: 2.0 / 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, err := Rank(s, "ochiai", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, Evaluate(ranked)); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_Empty(t *testing.T) {
	if ev := Evaluate(nil); ev.Found || ev.BestRank != 0 {
		t.Errorf("Evaluate(nil) = %+v", ev)
	}
}

func TestNewTable(t *testing.T) {
	s := fixture(t)

	table, err := NewTable(s, []string{"ochiai", "Tarantula"}, TableOptions{})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ochiai", "tarantula"}, table.Coefficients); diff != "" {
		t.Errorf("coefficients mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 2 || table.Rows[0].Component.Name != "A" {
		t.Fatalf("unexpected rows: %d", len(table.Rows))
	}
	if diff := cmp.Diff([]float64{0.632, 0.5}, table.Rows[0].Scores); diff != "" {
		t.Errorf("A scores mismatch (-want +got):\n%s", diff)
	}

	sorted, err := NewTable(s, []string{"ochiai", "tarantula"}, TableOptions{SortBy: "tarantula", IncludeLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range sorted.Rows {
		names = append(names, r.Component.Name)
	}
	if diff := cmp.Diff([]string{"B", "L0", "A"}, names); diff != "" {
		t.Errorf("sorted rows mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTable_Errors(t *testing.T) {
	s := fixture(t)
	if _, err := NewTable(s, []string{"bogus"}, TableOptions{}); !errors.Is(err, similarity.ErrUnknownCoefficient) {
		t.Errorf("unknown coefficient error = %v", err)
	}
	if _, err := NewTable(s, []string{"ochiai"}, TableOptions{SortBy: "dice"}); err == nil {
		t.Error("expected error for unrequested sort column")
	}
}

func TestRank_IgnoresComponentsAddedAfterExtraction(t *testing.T) {
	topo := topology.New()
	if _, err := topo.AddComponent("A", 0.5, 1.0, 0); err != nil {
		t.Fatal(err)
	}
	eng := activation.NewEngine(topo, rand.New(rand.NewSource(3)), activation.DefaultConfig())
	if _, err := eng.ActivateMany([]string{"A"}, 5, nil); err != nil {
		t.Fatal(err)
	}
	s := spectrum.Extract(topo, spectrum.Options{})

	if _, err := eng.ActivateMany([]string{"A"}, 5, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := topo.AddComponent("B", 1.0, 1.0, 0); err != nil {
		t.Fatal(err)
	}

	ranked, err := Rank(s, "ochiai", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 1 || ranked[0].Component.Name != "A" {
		t.Errorf("Rank() = %v, want only A", entries(ranked))
	}
	if n := ranked[0].Counts.N(); n != 5 {
		t.Errorf("A scored over %d traces, want 5", n)
	}

	table, err := NewTable(s, []string{"ochiai"}, TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("NewTable() has %d rows, want 1", len(table.Rows))
	}
}
