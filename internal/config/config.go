// Package config provides unified configuration loading for sflsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/sflsim/internal/similarity"
	"github.com/nvandessel/sflsim/internal/simulation"
)

// Config contains all sflsim configuration settings.
type Config struct {
	// Simulation controls how traces are sampled.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Diagnosis controls spectrum transforms and ranking.
	Diagnosis DiagnosisConfig `json:"diagnosis" yaml:"diagnosis"`

	// Evaluation controls multi-seed sweeps.
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures trace sampling.
type SimulationConfig struct {
	// Seed initializes the random source. Equal seeds reproduce equal runs.
	Seed int64 `json:"seed" yaml:"seed"`

	// Runs is the number of activations in "many" mode.
	Runs int `json:"runs" yaml:"runs"`

	// Mode is "many" or "until-failing". Empty defers to the scenario.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// MaxAttempts caps "until-failing" mode. Zero means unbounded.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Roots override the scenario's roots when set.
	Roots []string `json:"roots,omitempty" yaml:"roots,omitempty"`
}

// DiagnosisConfig configures spectrum transforms and ranking.
type DiagnosisConfig struct {
	// Coefficients are ranked in order; the first one sorts the table.
	Coefficients []string `json:"coefficients" yaml:"coefficients"`

	// IncludeLinks ranks link components alongside regular ones.
	IncludeLinks bool `json:"include_links" yaml:"include_links"`

	// Transform is "none", "unique" or "similar".
	Transform string `json:"transform" yaml:"transform"`

	// SimilarCoefficient, Lower and Upper parameterize the "similar" transform.
	SimilarCoefficient string  `json:"similar_coefficient" yaml:"similar_coefficient"`
	Lower              float64 `json:"lower" yaml:"lower"`
	Upper              float64 `json:"upper" yaml:"upper"`

	// AnyMatch attributes a repeated component's bits from any invocation
	// instead of the first.
	AnyMatch bool `json:"any_match" yaml:"any_match"`
}

// EvaluationConfig configures seed sweeps.
type EvaluationConfig struct {
	// Seeds is the number of seeds per sweep, starting at Simulation.Seed.
	Seeds int `json:"seeds" yaml:"seeds"`

	// Parallel bounds concurrent runs.
	Parallel int `json:"parallel" yaml:"parallel"`
}

// LoggingConfig configures sflsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to <dir>/events.jsonl.
	// "trace" additionally logs every simulated invocation.
	Level string `json:"level" yaml:"level"`

	// Dir is where events.jsonl is written. Supports ${VAR} syntax.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed: 1,
			Runs: 20,
		},
		Diagnosis: DiagnosisConfig{
			Coefficients:       []string{"ochiai", "jaccard", "tarantula"},
			Transform:          "none",
			SimilarCoefficient: "ochiai",
			Lower:              0.0,
			Upper:              1.0,
		},
		Evaluation: EvaluationConfig{
			Seeds:    50,
			Parallel: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".sflsim",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.sflsim/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".sflsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Logging.Dir = expandEnvVars(config.Logging.Dir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Simulation.Runs)
	}
	if c.Simulation.Mode != "" && !simulation.Mode(c.Simulation.Mode).Valid() {
		return fmt.Errorf("invalid mode: %s (valid: many, until-failing, or empty for the scenario default)", c.Simulation.Mode)
	}
	if c.Simulation.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative, got %d", c.Simulation.MaxAttempts)
	}

	if len(c.Diagnosis.Coefficients) == 0 {
		return errors.New("at least one coefficient is required")
	}
	for _, name := range c.Diagnosis.Coefficients {
		if _, err := similarity.Lookup(name); err != nil {
			return err
		}
	}
	if !simulation.Transform(c.Diagnosis.Transform).Valid() {
		return fmt.Errorf("invalid transform: %s (valid: none, unique, similar)", c.Diagnosis.Transform)
	}
	if c.Diagnosis.Transform == string(simulation.TransformSimilar) {
		if _, err := similarity.Lookup(c.Diagnosis.SimilarCoefficient); err != nil {
			return fmt.Errorf("similar_coefficient: %w", err)
		}
	}
	if c.Diagnosis.Lower > c.Diagnosis.Upper {
		return fmt.Errorf("lower bound %g exceeds upper bound %g", c.Diagnosis.Lower, c.Diagnosis.Upper)
	}

	if c.Evaluation.Seeds < 1 {
		return fmt.Errorf("seeds must be at least 1, got %d", c.Evaluation.Seeds)
	}
	if c.Evaluation.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Evaluation.Parallel)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SFLSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("SFLSIM_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Runs = n
		}
	}

	if v := os.Getenv("SFLSIM_MODE"); v != "" {
		config.Simulation.Mode = v
	}

	if v := os.Getenv("SFLSIM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.MaxAttempts = n
		}
	}

	if v := os.Getenv("SFLSIM_COEFFICIENTS"); v != "" {
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		config.Diagnosis.Coefficients = names
	}

	if v := os.Getenv("SFLSIM_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Evaluation.Parallel = n
		}
	}

	if v := os.Getenv("SFLSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
