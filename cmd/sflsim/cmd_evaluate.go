package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/evaluation"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure coefficients over many seeds",
		Long: `Replay a scenario under consecutive seeds and report, per coefficient,
how early the known faulty components are ranked.

Seeds run concurrently; results depend only on the seed.

Examples:
  sflsim evaluate --seeds 200 --parallel 8
  sflsim evaluate --scenario top0 -c ochiai -c tarantula -c jaccard --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, cfg)
			if cmd.Flags().Changed("seeds") {
				cfg.Evaluation.Seeds, _ = cmd.Flags().GetInt("seeds")
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Evaluation.Parallel, _ = cmd.Flags().GetInt("parallel")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			sc, err := resolveScenario(cmd)
			if err != nil {
				return err
			}

			logger, events := newLogger(cmd, cfg)
			defer events.Close()

			ctx, stop := interruptContext(cmd.Context())
			defer stop()
			go func() {
				// Restore default signal handling so a second interrupt kills
				// the process.
				<-ctx.Done()
				stop()
			}()

			rc := runConfig(cfg)
			rc.Logger = logger
			rc.Events = events
			report, err := evaluation.Sweep(ctx, sc, evaluation.SweepConfig{
				FirstSeed: cfg.Simulation.Seed,
				Seeds:     cfg.Evaluation.Seeds,
				Parallel:  cfg.Evaluation.Parallel,
				Run:       rc,
			})
			if err != nil {
				return err
			}
			events.Log(map[string]any{
				"event":    "sweep",
				"run_id":   report.RunID,
				"scenario": report.Scenario,
				"seeds":    len(report.Results),
				"duration": report.Duration,
			})

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	addScenarioFlags(cmd)
	addSimulationFlags(cmd)
	cmd.Flags().Int("seeds", 0, "Number of seeds, starting at --seed")
	cmd.Flags().Int("parallel", 0, "Maximum concurrent runs")

	return cmd
}

func printReport(cmd *cobra.Command, r *evaluation.Report) {
	w := cmd.OutOrStdout()
	exhausted := 0
	for _, res := range r.Results {
		if res.Exhausted {
			exhausted++
		}
	}
	fmt.Fprintf(w, "Scenario %s: %d seeds in %s (run %s)\n", r.Scenario, len(r.Results), r.Duration, r.RunID)
	if exhausted > 0 {
		fmt.Fprintf(w, "%d seeds produced no failing trace\n", exhausted)
	}
	fmt.Fprintf(w, "\n%-12s %6s %9s %10s %6s\n", "COEFFICIENT", "FOUND", "MEAN EXAM", "MEAN RANK", "TOP-1")
	for _, s := range r.Summaries {
		fmt.Fprintf(w, "%-12s %6d %9.3f %10.2f %5.0f%%\n",
			s.Coefficient, s.Found, s.MeanExam, s.MeanBestRank, s.Top1Rate*100)
	}
}
