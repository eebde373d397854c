package simulation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/sflsim/internal/logging"
	"github.com/nvandessel/sflsim/internal/similarity"
)

const pairDoc = `name: pair
roots: [A]
components:
  - {name: A, health: 1.0, failure: 1.0}
  - {name: B, health: 0.5, failure: 1.0}
links:
  - {name: L0, from: A, to: B, weight: 0.5}
`

const healthyDoc = `name: healthy
roots: [A]
components:
  - {name: A, health: 1.0, failure: 1.0}
`

func TestRun_Readme(t *testing.T) {
	sc, err := Builtin("readme")
	if err != nil {
		t.Fatal(err)
	}
	out, err := Run(sc, RunConfig{
		Seed:         1,
		Runs:         20,
		Coefficients: []string{"ochiai", "jaccard"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.Topology.TraceCount() != 20 {
		t.Fatalf("TraceCount() = %d, want 20", out.Topology.TraceCount())
	}
	// C2 is always reached through L0 and never healthy.
	if got := CountFailing(out.Topology); got != 20 {
		t.Errorf("failing traces = %d, want 20", got)
	}
	AssertPropagation(t, out.Topology)
	AssertCoverage(t, out.Full)

	if len(out.Diagnoses) != 2 {
		t.Fatalf("Diagnoses = %d, want 2", len(out.Diagnoses))
	}
	for _, d := range out.Diagnoses {
		if len(d.Ranked) != 5 {
			t.Errorf("%s ranked %d components, want 5", d.Coefficient, len(d.Ranked))
		}
		ev := d.Evaluation
		if !ev.Found || ev.Faulty != 2 {
			t.Errorf("%s evaluation = %+v, want both faults found", d.Coefficient, ev)
		}
		if ev.Exam <= 0 || ev.Exam > 1 {
			t.Errorf("%s exam = %v, want (0, 1]", d.Coefficient, ev.Exam)
		}
	}
}

func TestRun_Reproducible(t *testing.T) {
	sc, err := Builtin("readme")
	if err != nil {
		t.Fatal(err)
	}
	cfg := RunConfig{Seed: 42, Runs: 30, Coefficients: []string{"tarantula"}}
	first, err := Run(sc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(sc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Full.Activity.Ints(), second.Full.Activity.Ints()); diff != "" {
		t.Errorf("activity differs between runs with the same seed:\n%s", diff)
	}
	if diff := cmp.Diff(first.Full.Fault.Ints(), second.Full.Fault.Ints()); diff != "" {
		t.Errorf("faults differ between runs with the same seed:\n%s", diff)
	}
	if diff := cmp.Diff(first.Diagnoses[0].Evaluation, second.Diagnoses[0].Evaluation); diff != "" {
		t.Errorf("evaluation differs between runs with the same seed:\n%s", diff)
	}
}

func TestRun_Top0UntilFailing(t *testing.T) {
	sc, err := Builtin("top0")
	if err != nil {
		t.Fatal(err)
	}
	const limit = 20000
	out, err := Run(sc, RunConfig{Seed: 3, MaxAttempts: limit, Coefficients: []string{"ochiai"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Mode != ModeUntilFailing {
		t.Fatalf("Mode = %q, want scenario default %q", out.Mode, ModeUntilFailing)
	}
	AssertPropagation(t, out.Topology)

	traces := out.Topology.Traces()
	if out.Exhausted {
		if len(traces) != limit {
			t.Errorf("exhausted after %d traces, want %d", len(traces), limit)
		}
		return
	}
	for i, tr := range traces[:len(traces)-1] {
		if tr.Failing() {
			t.Fatalf("trace %d failed before the last trace", i)
		}
	}
	if !traces[len(traces)-1].Failing() {
		t.Error("last trace is not failing")
	}
	if CountFailing(out.Topology) != 1 {
		t.Errorf("failing traces = %d, want 1", CountFailing(out.Topology))
	}
}

func TestRun_Exhausted(t *testing.T) {
	sc := decode(t, healthyDoc)
	var buf bytes.Buffer
	out, err := Run(sc, RunConfig{
		Mode:        ModeUntilFailing,
		MaxAttempts: 3,
		Logger:      logging.NewLogger("info", &buf),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !out.Exhausted {
		t.Error("Exhausted = false, want true")
	}
	if out.Topology.TraceCount() != 3 {
		t.Errorf("TraceCount() = %d, want 3", out.Topology.TraceCount())
	}
	if !strings.Contains(buf.String(), "no failing trace") {
		t.Errorf("missing warning in log: %q", buf.String())
	}
}

func TestRun_UniqueTransform(t *testing.T) {
	sc := decode(t, pairDoc)
	out, err := Run(sc, RunConfig{Seed: 5, Runs: 200, Transform: TransformUnique, Coefficients: []string{"ochiai"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Spectrum.Traces() >= out.Full.Traces() {
		t.Errorf("unique transform kept %d of %d traces", out.Spectrum.Traces(), out.Full.Traces())
	}
	if len(out.Spectrum.FailingIndices()) != len(out.Full.FailingIndices()) {
		t.Errorf("failing traces: %d after transform, %d before",
			len(out.Spectrum.FailingIndices()), len(out.Full.FailingIndices()))
	}
}

func TestRun_SimilarTransform(t *testing.T) {
	sc := decode(t, pairDoc)
	out, err := Run(sc, RunConfig{Seed: 5, Runs: 50, Transform: TransformSimilar, Lower: 0, Upper: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Full.FailingIndices()) > 0 && out.Spectrum.Traces() != out.Full.Traces() {
		t.Errorf("full-range similar transform kept %d of %d traces", out.Spectrum.Traces(), out.Full.Traces())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    RunConfig
		wantIs error
	}{
		{"zero runs", RunConfig{Runs: 0}, nil},
		{"bad mode", RunConfig{Runs: 1, Mode: "sometimes"}, nil},
		{"bad transform", RunConfig{Runs: 1, Transform: "squash"}, nil},
		{"unknown coefficient", RunConfig{Runs: 1, Coefficients: []string{"bogus"}}, similarity.ErrUnknownCoefficient},
		{"unknown similar coefficient", RunConfig{Runs: 1, Transform: TransformSimilar, SimilarCoefficient: "bogus"}, similarity.ErrUnknownCoefficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(decode(t, pairDoc), tt.cfg)
			if err == nil {
				t.Fatal("Run() succeeded, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestRun_RootOverride(t *testing.T) {
	out, err := Run(decode(t, pairDoc), RunConfig{Seed: 1, Runs: 5, Roots: []string{"B"}})
	if err != nil {
		t.Fatal(err)
	}
	for i, tr := range out.Topology.Traces() {
		if tr.Covers("A") {
			t.Errorf("trace %d covers A with root override B", i)
		}
	}
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, decode(t, healthyDoc), RunConfig{
		Mode:         ModeUntilFailing,
		Coefficients: []string{"ochiai"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunContext() error = %v, want context.Canceled", err)
	}
}
