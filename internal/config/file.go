// This file loads sweep plans from YAML or JSON files.

package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// SweepPlan is the on-disk description of a benchmark sweep.
//
//	sweep:
//	  name: nightly
//	  sizes: [1000, 10000, 100000]
//	  cutoff: 5s
//	  workers: 8
type SweepPlan struct {
	Sweep SweepSpec `yaml:"sweep" json:"sweep"`
}

// SweepSpec holds the fields of a sweep plan. Zero values leave the
// corresponding setting untouched.
type SweepSpec struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Sizes       []int64 `yaml:"sizes" json:"sizes"`
	Start       int64   `yaml:"start" json:"start"`
	Stop        int64   `yaml:"stop" json:"stop"`
	Step        int64   `yaml:"step" json:"step"`
	Growth      float64 `yaml:"growth" json:"growth"`
	Cutoff      string  `yaml:"cutoff" json:"cutoff"`
	Repeats     int     `yaml:"repeats" json:"repeats"`
	Workers     int     `yaml:"workers" json:"workers"`
	Algo        string  `yaml:"algo" json:"algo"`
}

// LoadSweepFile reads a sweep plan. The format is chosen from the extension:
// .yaml, .yml or .json.
func LoadSweepFile(path string) (*SweepPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep file: %w", err)
	}

	var plan SweepPlan
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported sweep file format: %s", ext)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan for values that can never be valid.
func (p *SweepPlan) Validate() error {
	s := p.Sweep
	for _, n := range s.Sizes {
		if n < 0 {
			return fmt.Errorf("sweep.sizes contains negative n %d", n)
		}
	}
	if s.Start < 0 || s.Stop < 0 || s.Step < 0 {
		return fmt.Errorf("sweep.start, sweep.stop and sweep.step must be non-negative")
	}
	if s.Growth < 0 {
		return fmt.Errorf("sweep.growth must be non-negative")
	}
	if s.Repeats < 0 {
		return fmt.Errorf("sweep.repeats must be non-negative")
	}
	if s.Workers < 0 {
		return fmt.Errorf("sweep.workers must be non-negative")
	}
	if s.Cutoff != "" {
		if _, err := time.ParseDuration(s.Cutoff); err != nil {
			return fmt.Errorf("invalid sweep.cutoff: %w", err)
		}
	}
	return nil
}

// applyTo copies plan values into cfg for settings neither the command line
// nor the environment provided.
func (p *SweepPlan) applyTo(cfg *AppConfig, fs *flag.FlagSet) error {
	s := p.Sweep
	cfg.SweepName = s.Name

	userSweep := providedByUser(fs, "SIZES", "sizes") ||
		isFlagSetAny(fs, "start", "stop", "step", "growth")
	if !userSweep {
		switch {
		case len(s.Sizes) > 0:
			cfg.Sizes = append([]int64(nil), s.Sizes...)
		case s.Stop > 0:
			cfg.Start, cfg.Stop, cfg.Step, cfg.Growth = s.Start, s.Stop, s.Step, s.Growth
		}
	}
	if s.Cutoff != "" && !providedByUser(fs, "CUTOFF", "cutoff") {
		d, err := time.ParseDuration(s.Cutoff)
		if err != nil {
			return apperrors.NewConfigError("invalid sweep.cutoff: %v", err)
		}
		cfg.Cutoff = d
	}
	if s.Repeats > 0 && !providedByUser(fs, "REPEATS", "repeats") {
		cfg.Repeats = s.Repeats
	}
	if s.Workers > 0 && !providedByUser(fs, "WORKERS", "workers") {
		cfg.Workers = s.Workers
	}
	if s.Algo != "" && !providedByUser(fs, "ALGO", "algo") {
		cfg.Algo = s.Algo
	}
	return nil
}

// providedByUser reports whether one of flags was set on the command line or
// FACTCALC_<envKey> is present in the environment.
func providedByUser(fs *flag.FlagSet, envKey string, flags ...string) bool {
	return isFlagSetAny(fs, flags...) || os.Getenv(EnvPrefix+envKey) != ""
}
