package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/config"
	"github.com/nvandessel/sflsim/internal/simulation"
	"github.com/nvandessel/sflsim/internal/trace"
)

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().String("scenario", "readme", "Built-in scenario name (see 'sflsim scenarios')")
	cmd.Flags().String("file", "", "Load the scenario from a YAML file instead")
}

func resolveScenario(cmd *cobra.Command) (*simulation.Scenario, error) {
	name, _ := cmd.Flags().GetString("scenario")
	file, _ := cmd.Flags().GetString("file")
	return simulation.Resolve(name, file)
}

// addSimulationFlags registers the flags shared by run and evaluate. Each
// one overrides its config value only when set.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().Int("runs", 0, "Number of activations in 'many' mode")
	cmd.Flags().String("mode", "", "Sampling mode: many or until-failing")
	cmd.Flags().Int("max-attempts", 0, "Attempt cap for until-failing mode (0 = unbounded)")
	cmd.Flags().StringSlice("roots", nil, "Components to activate (default: the scenario's roots)")
	cmd.Flags().StringSliceP("coefficient", "c", nil, "Similarity coefficients to rank with")
	cmd.Flags().String("transform", "", "Trace transform: none, unique or similar")
	cmd.Flags().Float64("lower", 0, "Lower similarity bound for the similar transform")
	cmd.Flags().Float64("upper", 0, "Upper similarity bound for the similar transform")
	cmd.Flags().Bool("links", false, "Rank link components too")
	cmd.Flags().Bool("match-any", false, "Attribute repeated invocations from any occurrence, not the first")
}

func applySimulationFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Simulation.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("runs") {
		cfg.Simulation.Runs, _ = f.GetInt("runs")
	}
	if f.Changed("mode") {
		cfg.Simulation.Mode, _ = f.GetString("mode")
	}
	if f.Changed("max-attempts") {
		cfg.Simulation.MaxAttempts, _ = f.GetInt("max-attempts")
	}
	if f.Changed("roots") {
		cfg.Simulation.Roots, _ = f.GetStringSlice("roots")
	}
	if f.Changed("coefficient") {
		cfg.Diagnosis.Coefficients, _ = f.GetStringSlice("coefficient")
	}
	if f.Changed("transform") {
		cfg.Diagnosis.Transform, _ = f.GetString("transform")
	}
	if f.Changed("lower") {
		cfg.Diagnosis.Lower, _ = f.GetFloat64("lower")
	}
	if f.Changed("upper") {
		cfg.Diagnosis.Upper, _ = f.GetFloat64("upper")
	}
	if f.Changed("links") {
		cfg.Diagnosis.IncludeLinks, _ = f.GetBool("links")
	}
	if f.Changed("match-any") {
		cfg.Diagnosis.AnyMatch, _ = f.GetBool("match-any")
	}
}

// runConfig translates the configuration into a simulation run.
func runConfig(cfg *config.Config) simulation.RunConfig {
	match := trace.MatchFirst
	if cfg.Diagnosis.AnyMatch {
		match = trace.MatchAny
	}
	return simulation.RunConfig{
		Seed:               cfg.Simulation.Seed,
		Runs:               cfg.Simulation.Runs,
		Mode:               simulation.Mode(cfg.Simulation.Mode),
		MaxAttempts:        cfg.Simulation.MaxAttempts,
		Roots:              cfg.Simulation.Roots,
		Transform:          simulation.Transform(cfg.Diagnosis.Transform),
		SimilarCoefficient: cfg.Diagnosis.SimilarCoefficient,
		Lower:              cfg.Diagnosis.Lower,
		Upper:              cfg.Diagnosis.Upper,
		Match:              match,
		Coefficients:       cfg.Diagnosis.Coefficients,
		IncludeLinks:       cfg.Diagnosis.IncludeLinks,
	}
}
