package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/nvandessel/sflsim/internal/activation"
	"github.com/nvandessel/sflsim/internal/logging"
	"github.com/nvandessel/sflsim/internal/ranking"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// Mode selects how test executions are sampled.
type Mode string

const (
	// ModeMany runs a fixed number of activations.
	ModeMany Mode = "many"
	// ModeUntilFailing repeats activations until one fails.
	ModeUntilFailing Mode = "until-failing"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeMany || m == ModeUntilFailing }

// Transform selects a trace-set reduction applied before diagnosis.
type Transform string

const (
	TransformNone    Transform = "none"
	TransformUnique  Transform = "unique"
	TransformSimilar Transform = "similar"
)

// Valid reports whether t is a known transform. The empty value means none.
func (t Transform) Valid() bool {
	return t == "" || t == TransformNone || t == TransformUnique || t == TransformSimilar
}

// RunConfig configures one simulation run.
type RunConfig struct {
	Seed int64
	// Runs is the activation count in ModeMany.
	Runs int
	// Mode defaults to the scenario's mode, then to ModeMany.
	Mode        Mode
	MaxAttempts int
	// Roots override the scenario's roots when set.
	Roots []string

	Transform          Transform
	SimilarCoefficient string
	Lower, Upper       float64
	Match              trace.Match

	Coefficients []string
	IncludeLinks bool

	Logger *slog.Logger
	Events *logging.EventLog
}

// Diagnosis is the ranking produced by one coefficient.
type Diagnosis struct {
	Coefficient string
	Ranked      []ranking.ScoredComponent
	Evaluation  ranking.Evaluation
}

// Outcome captures everything a run produced.
type Outcome struct {
	Scenario string
	Seed     int64
	Mode     Mode

	// Topology holds the full trace history.
	Topology *topology.Topology
	// Full is the spectrum of every trace; Spectrum is the one diagnosed,
	// after the configured transform.
	Full     *spectrum.Spectrum
	Spectrum *spectrum.Spectrum

	Diagnoses []Diagnosis

	// Exhausted is set when ModeUntilFailing hit MaxAttempts without a
	// failing trace.
	Exhausted bool
}

// Run builds the scenario's topology, samples traces with a generator
// seeded from cfg.Seed, extracts and transforms the spectrum, and ranks the
// components under every configured coefficient.
func Run(sc *Scenario, cfg RunConfig) (*Outcome, error) {
	return RunContext(context.Background(), sc, cfg)
}

// RunContext is Run with cancellation: sampling stops between activations
// once ctx is done and the run fails with ctx's error.
func RunContext(ctx context.Context, sc *Scenario, cfg RunConfig) (*Outcome, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	topo, err := sc.Build()
	if err != nil {
		return nil, err
	}

	mode := cfg.Mode
	if mode == "" {
		mode = sc.Mode
	}
	if mode == "" {
		mode = ModeMany
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("run %s: invalid mode %q", sc.Name, mode)
	}
	roots := cfg.Roots
	if len(roots) == 0 {
		roots = sc.Roots
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	engine := activation.NewEngine(topo, rng, activation.Config{
		MaxAttempts: cfg.MaxAttempts,
		Logger:      logger,
		Events:      cfg.Events,
	})

	out := &Outcome{Scenario: sc.Name, Seed: cfg.Seed, Mode: mode, Topology: topo}
	switch mode {
	case ModeMany:
		if cfg.Runs < 1 {
			return nil, fmt.Errorf("run %s: runs must be at least 1, got %d", sc.Name, cfg.Runs)
		}
		if _, err := engine.ActivateManyContext(ctx, roots, cfg.Runs, nil); err != nil {
			return nil, fmt.Errorf("run %s: %w", sc.Name, err)
		}
	case ModeUntilFailing:
		_, err := engine.ActivateUntilFailingContext(ctx, roots, nil)
		if errors.Is(err, activation.ErrAttemptsExhausted) {
			out.Exhausted = true
			logger.Warn("no failing trace", "scenario", sc.Name, "seed", cfg.Seed, "attempts", cfg.MaxAttempts)
		} else if err != nil {
			return nil, fmt.Errorf("run %s: %w", sc.Name, err)
		}
	}

	out.Full = spectrum.Extract(topo, spectrum.Options{Match: cfg.Match})
	out.Spectrum, err = applyTransform(out.Full, cfg)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", sc.Name, err)
	}
	logger.Debug("spectrum extracted",
		"scenario", sc.Name, "traces", out.Full.Traces(), "diagnosed", out.Spectrum.Traces(),
		"failing", len(out.Spectrum.FailingIndices()))

	for _, name := range cfg.Coefficients {
		ranked, err := ranking.Rank(out.Spectrum, name, ranking.Options{IncludeLinks: cfg.IncludeLinks})
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", sc.Name, err)
		}
		out.Diagnoses = append(out.Diagnoses, Diagnosis{
			Coefficient: name,
			Ranked:      ranked,
			Evaluation:  ranking.Evaluate(ranked),
		})
	}
	return out, nil
}

func applyTransform(s *spectrum.Spectrum, cfg RunConfig) (*spectrum.Spectrum, error) {
	switch cfg.Transform {
	case "", TransformNone:
		return s, nil
	case TransformUnique:
		return s.UniqueFailing(), nil
	case TransformSimilar:
		coef := cfg.SimilarCoefficient
		if coef == "" {
			coef = "ochiai"
		}
		return s.SimilarFailing(coef, cfg.Lower, cfg.Upper)
	default:
		return nil, fmt.Errorf("unknown transform %q", cfg.Transform)
	}
}
