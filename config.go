package tpmopt

import (
	"fmt"
	"time"
)

// AnnealingConfig controls the simulated annealing strategy.
type AnnealingConfig struct {
	// InitialTemperature is the starting temperature of the cooling
	// schedule. Higher values accept more worsening moves early on.
	InitialTemperature float64 `yaml:"initialTemperature"`

	// CoolingRate is the geometric decay factor applied each iteration.
	// Must be in (0, 1); values close to 1 cool slowly.
	CoolingRate float64 `yaml:"coolingRate"`

	// MinTemperature is the temperature floor that stops the search.
	MinTemperature float64 `yaml:"minTemperature"`

	// MaxIterations is the hard iteration cap independent of temperature.
	MaxIterations int `yaml:"maxIterations"`
}

// HybridConfig controls the Pareto-guided hybrid strategy.
type HybridConfig struct {
	// InitialTemperature is the starting temperature of the refinement
	// phase.
	InitialTemperature float64 `yaml:"initialTemperature"`

	// CoolingRate is the geometric decay factor applied each iteration.
	CoolingRate float64 `yaml:"coolingRate"`

	// MinTemperature is the temperature floor that stops the refinement.
	MinTemperature float64 `yaml:"minTemperature"`

	// MaxIterations is the hard iteration cap.
	MaxIterations int `yaml:"maxIterations"`

	// MaxRuntime is the wall-clock budget for the whole optimization.
	MaxRuntime time.Duration `yaml:"maxRuntime"`

	// NoImprovementLimit stops the search after this many iterations
	// without a new dominating best solution.
	NoImprovementLimit int `yaml:"noImprovementLimit"`

	// MaxNeighborRetries bounds how many candidate neighbors are tried
	// before keeping the current state for the iteration.
	MaxNeighborRetries int `yaml:"maxNeighborRetries"`
}

// ExactConfig controls the exact (CP-SAT) strategy.
type ExactConfig struct {
	// MaxSolveTime caps the solver's search time. Zero means no explicit
	// limit; the solver then terminates on its own criteria.
	MaxSolveTime time.Duration `yaml:"maxSolveTime"`
}

// Config is the configuration for the optimizer.
//
// It gathers every scoring weight, threshold, and strategy parameter into
// one value passed to each strategy at construction, so no tuning knob
// lives in ambient package state.
type Config struct {
	// Weights are the composite assignment score weights.
	Weights Weights `yaml:"weights"`

	// StrictFixedAssignments controls how fixed program pins that violate
	// level, conflict, or capacity legality are handled. When false (the
	// default), illegal pins are honored and surfaced as diagnostics only.
	// When true, strategies refuse to run and return ErrInvalidFixedAssignment.
	StrictFixedAssignments bool `yaml:"strictFixedAssignments"`

	// Seed seeds the pseudorandom source of the randomized strategies.
	// Zero selects a deterministic seed derived from the dataset, so
	// repeated runs over the same input reproduce the same result.
	Seed uint64 `yaml:"seed"`

	// Annealing controls the simulated annealing strategy.
	Annealing AnnealingConfig `yaml:"annealing"`

	// Hybrid controls the Pareto-guided hybrid strategy.
	Hybrid HybridConfig `yaml:"hybrid"`

	// Exact controls the exact CP-SAT strategy.
	Exact ExactConfig `yaml:"exact"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Timezone:   0.30,
			Skill:      0.25,
			Level:      0.20,
			Portfolio:  0.15,
			Preference: 0.10,
		},
		Annealing: AnnealingConfig{
			InitialTemperature: 1.0,
			CoolingRate:        0.995,
			MinTemperature:     0.001,
			MaxIterations:      10000,
		},
		Hybrid: HybridConfig{
			InitialTemperature: 1.0,
			CoolingRate:        0.99,
			MinTemperature:     0.001,
			MaxIterations:      5000,
			MaxRuntime:         5 * time.Minute,
			NoImprovementLimit: 1000,
			MaxNeighborRetries: 50,
		},
		Exact: ExactConfig{
			MaxSolveTime: 0,
		},
	}
}

// SetDefaults fills in missing configuration values with production
// defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Weights.Sum() == 0 {
		cfg.Weights = defaults.Weights
	}
	if cfg.Annealing.InitialTemperature == 0 {
		cfg.Annealing.InitialTemperature = defaults.Annealing.InitialTemperature
	}
	if cfg.Annealing.CoolingRate == 0 {
		cfg.Annealing.CoolingRate = defaults.Annealing.CoolingRate
	}
	if cfg.Annealing.MinTemperature == 0 {
		cfg.Annealing.MinTemperature = defaults.Annealing.MinTemperature
	}
	if cfg.Annealing.MaxIterations == 0 {
		cfg.Annealing.MaxIterations = defaults.Annealing.MaxIterations
	}
	if cfg.Hybrid.InitialTemperature == 0 {
		cfg.Hybrid.InitialTemperature = defaults.Hybrid.InitialTemperature
	}
	if cfg.Hybrid.CoolingRate == 0 {
		cfg.Hybrid.CoolingRate = defaults.Hybrid.CoolingRate
	}
	if cfg.Hybrid.MinTemperature == 0 {
		cfg.Hybrid.MinTemperature = defaults.Hybrid.MinTemperature
	}
	if cfg.Hybrid.MaxIterations == 0 {
		cfg.Hybrid.MaxIterations = defaults.Hybrid.MaxIterations
	}
	if cfg.Hybrid.MaxRuntime == 0 {
		cfg.Hybrid.MaxRuntime = defaults.Hybrid.MaxRuntime
	}
	if cfg.Hybrid.NoImprovementLimit == 0 {
		cfg.Hybrid.NoImprovementLimit = defaults.Hybrid.NoImprovementLimit
	}
	if cfg.Hybrid.MaxNeighborRetries == 0 {
		cfg.Hybrid.MaxNeighborRetries = defaults.Hybrid.MaxNeighborRetries
	}
	// Exact.MaxSolveTime of 0 is valid (no limit), so no default applies.
}

// Validate checks configuration constraints and returns an error for
// invalid values.
//
// Hard Validation Rules:
//   - All weights >= 0
//   - Cooling rates in (0, 1) for both annealing and hybrid
//   - Positive temperature floors below the initial temperature
//   - Positive iteration caps and retry bounds
//   - Non-negative time budgets
//
// Returns:
//   - error: Validation error with a clear explanation, nil if valid
func (cfg *Config) Validate() error {
	for name, w := range map[string]float64{
		"timezone":   cfg.Weights.Timezone,
		"skill":      cfg.Weights.Skill,
		"level":      cfg.Weights.Level,
		"portfolio":  cfg.Weights.Portfolio,
		"preference": cfg.Weights.Preference,
	} {
		if w < 0 {
			return fmt.Errorf("weight %q must be >= 0, got %v", name, w)
		}
	}

	if cfg.Annealing.CoolingRate <= 0 || cfg.Annealing.CoolingRate >= 1 {
		return fmt.Errorf("annealing cooling rate must be in (0, 1), got %v", cfg.Annealing.CoolingRate)
	}
	if cfg.Hybrid.CoolingRate <= 0 || cfg.Hybrid.CoolingRate >= 1 {
		return fmt.Errorf("hybrid cooling rate must be in (0, 1), got %v", cfg.Hybrid.CoolingRate)
	}

	if cfg.Annealing.MinTemperature <= 0 || cfg.Annealing.MinTemperature >= cfg.Annealing.InitialTemperature {
		return fmt.Errorf(
			"annealing temperature floor (%v) must be positive and below the initial temperature (%v)",
			cfg.Annealing.MinTemperature, cfg.Annealing.InitialTemperature,
		)
	}
	if cfg.Hybrid.MinTemperature <= 0 || cfg.Hybrid.MinTemperature >= cfg.Hybrid.InitialTemperature {
		return fmt.Errorf(
			"hybrid temperature floor (%v) must be positive and below the initial temperature (%v)",
			cfg.Hybrid.MinTemperature, cfg.Hybrid.InitialTemperature,
		)
	}

	if cfg.Annealing.MaxIterations <= 0 {
		return fmt.Errorf("annealing max iterations must be > 0, got %d", cfg.Annealing.MaxIterations)
	}
	if cfg.Hybrid.MaxIterations <= 0 {
		return fmt.Errorf("hybrid max iterations must be > 0, got %d", cfg.Hybrid.MaxIterations)
	}

	if cfg.Hybrid.MaxRuntime < 0 {
		return fmt.Errorf("hybrid max runtime must be >= 0, got %v", cfg.Hybrid.MaxRuntime)
	}
	if cfg.Hybrid.NoImprovementLimit <= 0 {
		return fmt.Errorf("hybrid no-improvement limit must be > 0, got %d", cfg.Hybrid.NoImprovementLimit)
	}
	if cfg.Hybrid.MaxNeighborRetries <= 0 {
		return fmt.Errorf("hybrid neighbor retries must be > 0, got %d", cfg.Hybrid.MaxNeighborRetries)
	}
	if cfg.Exact.MaxSolveTime < 0 {
		return fmt.Errorf("exact max solve time must be >= 0, got %v", cfg.Exact.MaxSolveTime)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// This is called after Validate() in New() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Scores remain comparable within a run when the weights are not a
	// convex combination, but stop being comparable across datasets.
	if sum := cfg.Weights.Sum(); sum < 0.99 || sum > 1.01 {
		logger.Warn(
			"scoring weights do not sum to 1.0",
			"sum", sum,
			"recommended", 1.0,
		)
	}

	if cfg.Annealing.MaxIterations < 1000 {
		logger.Warn(
			"annealing iteration budget is very small, results may be poor",
			"maxIterations", cfg.Annealing.MaxIterations,
			"recommended", "1000 or higher",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Search budgets are 10-100x smaller than production defaults to enable
// rapid iteration without sacrificing coverage. Use DefaultConfig() for
// real optimization runs.
//
// Returns:
//   - Config: Configuration with small search budgets for tests
//
// Example:
//
//	cfg := tpmopt.TestConfig()
//	opt, err := tpmopt.New(cfg, tpms, programs, tpmopt.MethodAnnealing)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Annealing.MaxIterations = 500 // 20x smaller
	cfg.Annealing.CoolingRate = 0.99  // cools faster
	cfg.Hybrid.MaxIterations = 300
	cfg.Hybrid.NoImprovementLimit = 100
	cfg.Hybrid.MaxRuntime = 10 * time.Second
	cfg.Exact.MaxSolveTime = 10 * time.Second

	return cfg
}
