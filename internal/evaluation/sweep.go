// Package evaluation measures how well similarity coefficients localize
// faults by replaying a scenario under many seeds and aggregating the
// resulting rankings against the scenario's known faulty components.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/sflsim/internal/logging"
	"github.com/nvandessel/sflsim/internal/ranking"
	"github.com/nvandessel/sflsim/internal/simulation"
)

// SweepConfig configures a multi-seed sweep.
type SweepConfig struct {
	// FirstSeed is the seed of the first run; run i uses FirstSeed+i.
	FirstSeed int64
	Seeds     int
	// Parallel bounds the number of concurrent runs. Values below 1 mean 1.
	Parallel int

	// Run is the per-seed configuration. Its Seed field is ignored.
	Run simulation.RunConfig
}

// SeedResult summarizes one seed's run.
type SeedResult struct {
	Seed        int64                `json:"seed"`
	Traces      int                  `json:"traces"`
	Failing     int                  `json:"failing"`
	Exhausted   bool                 `json:"exhausted,omitempty"`
	Evaluations []ranking.Evaluation `json:"evaluations"`
}

// Summary aggregates one coefficient over every seed that exposed a fault.
type Summary struct {
	Coefficient  string  `json:"coefficient"`
	Found        int     `json:"found"`
	MeanExam     float64 `json:"mean_exam"`
	MeanBestRank float64 `json:"mean_best_rank"`
	Top1Rate     float64 `json:"top1_rate"`
}

// Report is the result of a sweep.
type Report struct {
	RunID        string       `json:"run_id"`
	Scenario     string       `json:"scenario"`
	Started      time.Time    `json:"started"`
	Duration     string       `json:"duration"`
	Coefficients []string     `json:"coefficients"`
	Results      []SeedResult `json:"results"`
	Summaries    []Summary    `json:"summaries"`
}

// Sweep runs the scenario once per seed on a bounded worker pool. Every run
// builds its own topology and random source, so results depend only on the
// seed and not on scheduling. Cancelling ctx stops runs in progress,
// including uncapped until-failing searches.
func Sweep(ctx context.Context, sc *simulation.Scenario, cfg SweepConfig) (*Report, error) {
	if cfg.Seeds < 1 {
		return nil, fmt.Errorf("sweep: seeds must be at least 1, got %d", cfg.Seeds)
	}
	if len(cfg.Run.Coefficients) == 0 {
		return nil, fmt.Errorf("sweep: no coefficients")
	}
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	logger := cfg.Run.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	report := &Report{
		RunID:        uuid.New().String(),
		Scenario:     sc.Name,
		Started:      time.Now().UTC(),
		Coefficients: append([]string(nil), cfg.Run.Coefficients...),
		Results:      make([]SeedResult, cfg.Seeds),
	}
	logger.Info("sweep started", "run_id", report.RunID, "scenario", sc.Name, "seeds", cfg.Seeds, "workers", parallel)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < cfg.Seeds; i++ {
		seed := cfg.FirstSeed + int64(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run := cfg.Run
			run.Seed = seed
			out, err := simulation.RunContext(gctx, sc, run)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res := SeedResult{
				Seed:      seed,
				Traces:    out.Full.Traces(),
				Failing:   len(out.Full.FailingIndices()),
				Exhausted: out.Exhausted,
			}
			for _, d := range out.Diagnoses {
				res.Evaluations = append(res.Evaluations, d.Evaluation)
			}
			report.Results[i] = res
			logger.Debug("seed finished", "seed", seed, "traces", res.Traces, "failing", res.Failing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep %s: %w", sc.Name, err)
	}

	report.Summaries = summarize(report.Coefficients, report.Results)
	report.Duration = time.Since(report.Started).Round(time.Millisecond).String()
	logger.Info("sweep finished", "run_id", report.RunID, "duration", report.Duration)
	return report, nil
}

func summarize(coefficients []string, results []SeedResult) []Summary {
	summaries := make([]Summary, len(coefficients))
	for c, name := range coefficients {
		s := Summary{Coefficient: name}
		var exam, rank float64
		top1 := 0
		for _, r := range results {
			ev := r.Evaluations[c]
			if !ev.Found {
				continue
			}
			s.Found++
			exam += ev.Exam
			rank += float64(ev.BestRank)
			if ev.BestRank == 1 {
				top1++
			}
		}
		if s.Found > 0 {
			s.MeanExam = exam / float64(s.Found)
			s.MeanBestRank = rank / float64(s.Found)
			s.Top1Rate = float64(top1) / float64(s.Found)
		}
		summaries[c] = s
	}
	return summaries
}
