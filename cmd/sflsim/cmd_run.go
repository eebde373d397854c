package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/display"
	"github.com/nvandessel/sflsim/internal/ranking"
	"github.com/nvandessel/sflsim/internal/simulation"
	"github.com/nvandessel/sflsim/internal/spectrum"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a scenario and rank its components",
		Long: `Build a scenario's topology, sample test executions, extract the hit
spectrum and rank every component under each coefficient.

Examples:
  sflsim run --seed 7 --runs 50
  sflsim run --scenario top0 --mode until-failing -c ochiai -c tarantula
  sflsim run --file my.yaml --transform unique --json`,
		RunE: runRun,
	}
	addScenarioFlags(cmd)
	addSimulationFlags(cmd)
	return cmd
}

type rankEntry struct {
	Component string  `json:"component"`
	Score     float64 `json:"score"`
}

type diagnosisReport struct {
	Coefficient string             `json:"coefficient"`
	Ranking     []rankEntry        `json:"ranking"`
	Evaluation  ranking.Evaluation `json:"evaluation"`
}

type runReport struct {
	RunID      string            `json:"run_id"`
	Scenario   string            `json:"scenario"`
	Seed       int64             `json:"seed"`
	Mode       string            `json:"mode"`
	Exhausted  bool              `json:"exhausted,omitempty"`
	Components []string          `json:"components"`
	Traces     []string          `json:"traces"`
	Failing    []int             `json:"failing"`
	Activity   [][]int           `json:"activity"`
	Errors     []int             `json:"errors"`
	Diagnosed  int               `json:"diagnosed"`
	Diagnoses  []diagnosisReport `json:"diagnoses"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applySimulationFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	sc, err := resolveScenario(cmd)
	if err != nil {
		return err
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

	runID := uuid.New().String()
	events.Log(map[string]any{
		"event":     "run",
		"run_id":    runID,
		"scenario":  out.Scenario,
		"seed":      out.Seed,
		"traces":    out.Full.Traces(),
		"failing":   len(out.Full.FailingIndices()),
		"exhausted": out.Exhausted,
	})

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(newRunReport(runID, out))
	}
	return printRun(cmd, cfg.Diagnosis.Coefficients, cfg.Diagnosis.IncludeLinks, out)
}

func newRunReport(runID string, out *simulation.Outcome) runReport {
	r := runReport{
		RunID:     runID,
		Scenario:  out.Scenario,
		Seed:      out.Seed,
		Mode:      string(out.Mode),
		Exhausted: out.Exhausted,
		Failing:   out.Full.FailingIndices(),
		Activity:  out.Full.Activity.Ints(),
		Errors:    spectrum.Bits(out.Full.ErrorVector()),
		Diagnosed: out.Spectrum.Traces(),
	}
	for _, c := range out.Topology.Components() {
		r.Components = append(r.Components, c.Name)
	}
	for _, tr := range out.Topology.Traces() {
		r.Traces = append(r.Traces, display.FormatTrace(tr))
	}
	for _, d := range out.Diagnoses {
		dr := diagnosisReport{Coefficient: d.Coefficient, Evaluation: d.Evaluation}
		for _, sc := range d.Ranked {
			dr.Ranking = append(dr.Ranking, rankEntry{Component: sc.Component.Name, Score: sc.Score})
		}
		r.Diagnoses = append(r.Diagnoses, dr)
	}
	return r
}

func printRun(cmd *cobra.Command, coefficients []string, links bool, out *simulation.Outcome) error {
	w := cmd.OutOrStdout()
	p := display.NewPrinter(w)

	fmt.Fprintf(w, "Scenario %s, seed %d, mode %s\n\n", out.Scenario, out.Seed, out.Mode)
	fmt.Fprintln(w, "Components:")
	p.Components(out.Topology)

	fmt.Fprintf(w, "\nTraces (%d, %d failing):\n", out.Full.Traces(), len(out.Full.FailingIndices()))
	p.Traces(out.Topology)
	if out.Exhausted {
		fmt.Fprintln(w, "No failing trace within the attempt limit.")
	}

	fmt.Fprintln(w, "\nSpectrum:")
	p.Spectrum(out.Full)
	if out.Spectrum != out.Full {
		fmt.Fprintf(w, "\nDiagnosed spectrum (%d traces):\n", out.Spectrum.Traces())
		p.Spectrum(out.Spectrum)
	}

	table, err := ranking.NewTable(out.Spectrum, coefficients, ranking.TableOptions{
		IncludeLinks: links,
		SortBy:       coefficients[0],
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nDiagnosis:")
	p.Table(table, coefficients[0])

	fmt.Fprintln(w)
	for _, d := range out.Diagnoses {
		p.Evaluation(d.Coefficient, d.Evaluation)
	}
	return nil
}
