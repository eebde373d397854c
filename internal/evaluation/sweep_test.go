package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/nvandessel/sflsim/internal/ranking"
	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/simulation"
)

func readme(t *testing.T) *simulation.Scenario {
	t.Helper()
	sc, err := simulation.Builtin("readme")
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	report, err := Sweep(context.Background(), readme(t), SweepConfig{
		FirstSeed: 100,
		Seeds:     8,
		Parallel:  4,
		Run: simulation.RunConfig{
			Runs:         20,
			Coefficients: []string{"ochiai", "tarantula"},
		},
	})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
	}
	if len(report.Results) != 8 {
		t.Fatalf("Results = %d, want 8", len(report.Results))
	}
	for i, r := range report.Results {
		if r.Seed != 100+int64(i) {
			t.Errorf("Results[%d].Seed = %d, want %d", i, r.Seed, 100+i)
		}
		if r.Traces != 20 {
			t.Errorf("Results[%d].Traces = %d, want 20", i, r.Traces)
		}
		if len(r.Evaluations) != 2 {
			t.Errorf("Results[%d] has %d evaluations, want 2", i, len(r.Evaluations))
		}
	}
	if len(report.Summaries) != 2 {
		t.Fatalf("Summaries = %d, want 2", len(report.Summaries))
	}
	for _, s := range report.Summaries {
		if s.Found != 8 {
			t.Errorf("%s found = %d, want 8", s.Coefficient, s.Found)
		}
		if s.MeanExam <= 0 || s.MeanExam > 1 {
			t.Errorf("%s mean exam = %v, want (0, 1]", s.Coefficient, s.MeanExam)
		}
		if s.Top1Rate < 0 || s.Top1Rate > 1 {
			t.Errorf("%s top1 rate = %v, want [0, 1]", s.Coefficient, s.Top1Rate)
		}
	}
}

func TestSweep_ParallelismDoesNotChangeResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := SweepConfig{
		FirstSeed: 7,
		Seeds:     6,
		Run:       simulation.RunConfig{Runs: 15, Coefficients: []string{"ochiai"}},
	}
	cfg.Parallel = 1
	serial, err := Sweep(context.Background(), readme(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Parallel = 6
	parallel, err := Sweep(context.Background(), readme(t), cfg)
	if err != nil {
		t.Fatal(err)
	}

	ignore := cmpopts.IgnoreFields(Report{}, "RunID", "Started", "Duration")
	if diff := cmp.Diff(serial, parallel, ignore); diff != "" {
		t.Errorf("parallel sweep differs from serial (-serial +parallel):\n%s", diff)
	}
	if serial.RunID == parallel.RunID {
		t.Error("two sweeps share a run id")
	}
}

func TestSweep_Errors(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name   string
		cfg    SweepConfig
		wantIs error
	}{
		{"no seeds", SweepConfig{Run: simulation.RunConfig{Runs: 1, Coefficients: []string{"ochiai"}}}, nil},
		{"no coefficients", SweepConfig{Seeds: 1, Run: simulation.RunConfig{Runs: 1}}, nil},
		{"bad coefficient", SweepConfig{Seeds: 3, Parallel: 2, Run: simulation.RunConfig{Runs: 1, Coefficients: []string{"bogus"}}}, similarity.ErrUnknownCoefficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sweep(context.Background(), readme(t), tt.cfg)
			if err == nil {
				t.Fatal("Sweep() succeeded, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Sweep() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestSweep_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, readme(t), SweepConfig{
		Seeds:    4,
		Parallel: 2,
		Run:      simulation.RunConfig{Runs: 5, Coefficients: []string{"ochiai"}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sweep() error = %v, want context.Canceled", err)
	}
}

func TestSummarize(t *testing.T) {
	results := []SeedResult{
		{Evaluations: []ranking.Evaluation{{Found: true, BestRank: 1, Exam: 0.2}}},
		{Evaluations: []ranking.Evaluation{{Found: true, BestRank: 3, Exam: 0.6}}},
		{Evaluations: []ranking.Evaluation{{Found: false}}},
	}
	got := summarize([]string{"ochiai"}, results)
	want := []Summary{{Coefficient: "ochiai", Found: 2, MeanExam: 0.4, MeanBestRank: 2, Top1Rate: 0.5}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSweep_CancelStopsRunsInProgress(t *testing.T) {
	defer goleak.VerifyNone(t)

	// A never faults, so an uncapped until-failing run only ends on cancel.
	sc, err := simulation.Decode(strings.NewReader(`name: healthy
roots: [A]
components:
  - {name: A, health: 1.0, failure: 1.0}
`))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Sweep(ctx, sc, SweepConfig{
			Seeds:    2,
			Parallel: 2,
			Run: simulation.RunConfig{
				Mode:         simulation.ModeUntilFailing,
				Coefficients: []string{"ochiai"},
			},
		})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Sweep() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Sweep did not return after cancellation")
	}
}
