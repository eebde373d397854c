package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/simulation"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize a scenario topology",
		Long: `Output a scenario's topology in DOT (Graphviz) or JSON format.

With --annotate the scenario is simulated first and edges are weighted by
how often each link was traversed.

Examples:
  sflsim graph --scenario top0 | dot -Tpng > top0.png
  sflsim graph --annotate --runs 200 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			annotate, _ := cmd.Flags().GetBool("annotate")

			f, err := visualization.ParseFormat(format)
			if err != nil {
				return err
			}
			sc, err := resolveScenario(cmd)
			if err != nil {
				return err
			}

			topo, err := sc.Build()
			if err != nil {
				return err
			}
			var s *spectrum.Spectrum
			if annotate {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				applySimulationFlags(cmd, cfg)
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
				logger, events := newLogger(cmd, cfg)
				defer events.Close()

				rc := runConfig(cfg)
				rc.Logger = logger
				rc.Events = events
				out, err := simulation.Run(sc, rc)
				if err != nil {
					return err
				}
				topo, s = out.Topology, out.Full
			}

			switch f {
			case visualization.FormatDOT:
				fmt.Fprint(cmd.OutOrStdout(), visualization.RenderDOT(topo, s))
			case visualization.FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(visualization.RenderJSON(topo, s)); err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}
			}
			return nil
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().String("format", "dot", "Output format: dot or json")
	cmd.Flags().Bool("annotate", false, "Simulate first and weight edges by traversal frequency")
	cmd.Flags().Int64("seed", 0, "Random seed for --annotate")
	cmd.Flags().Int("runs", 0, "Number of activations for --annotate")
	cmd.Flags().String("mode", "", "Sampling mode for --annotate: many or until-failing")

	return cmd
}
