package tpmopt

import (
	"math/rand/v2"
)

// Option configures an Optimizer with optional dependencies.
type Option func(*optimizerOptions)

// optimizerOptions holds optional Optimizer configuration.
type optimizerOptions struct {
	logger  Logger
	metrics MetricsCollector
	scorer  TimezoneScorer
	rng     *rand.Rand
	seed    uint64
	seedSet bool
}

// WithLogger sets a custom logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	opt, err := tpmopt.New(cfg, tpms, programs, tpmopt.MethodExact, tpmopt.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *optimizerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "tpmopt")
//	opt, err := tpmopt.New(cfg, tpms, programs, tpmopt.MethodExact, tpmopt.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *optimizerOptions) {
		o.metrics = metrics
	}
}

// WithTimezoneScorer sets a custom timezone scorer.
//
// The default scorer resolves IANA zone offsets at the current instant.
// Tests pin a fixed instant to make DST-dependent offsets reproducible.
//
// Parameters:
//   - scorer: TimezoneScorer implementation
//
// Returns:
//   - Option: Functional option for New
func WithTimezoneScorer(scorer TimezoneScorer) Option {
	return func(o *optimizerOptions) {
		o.scorer = scorer
	}
}

// WithSeed seeds the randomized strategies' pseudorandom source. Takes
// precedence over Config.Seed. Without either, the seed is derived from
// the dataset, so repeated runs over the same input reproduce the same
// result.
//
// Parameters:
//   - seed: Seed value
//
// Returns:
//   - Option: Functional option for New
func WithSeed(seed uint64) Option {
	return func(o *optimizerOptions) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithRand replaces the pseudorandom source of the randomized strategies.
// Takes precedence over WithSeed and Config.Seed. Intended for tests.
//
// Parameters:
//   - rng: Pseudorandom source
//
// Returns:
//   - Option: Functional option for New
func WithRand(rng *rand.Rand) Option {
	return func(o *optimizerOptions) {
		o.rng = rng
	}
}
