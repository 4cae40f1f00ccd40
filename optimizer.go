package tpmopt

import (
	"context"
	"fmt"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/internal/logger"
	"github.com/motiteux/tpm-assignment-optimizer/internal/metrics"
	"github.com/motiteux/tpm-assignment-optimizer/strategy"
	"github.com/motiteux/tpm-assignment-optimizer/timezone"
)

// Method selects one of the built-in optimization strategies.
type Method string

const (
	// MethodExact solves the assignment problem to optimality with CP-SAT.
	MethodExact Method = "exact"

	// MethodAnnealing runs simulated annealing over a penalty-based
	// energy function.
	MethodAnnealing Method = "annealing"

	// MethodHybrid runs greedy construction plus Pareto-guided refinement.
	MethodHybrid Method = "hybrid"

	// MethodTwoPhase runs tiered greedy placement plus overload
	// rebalancing.
	MethodTwoPhase Method = "two-phase"
)

// Methods lists every built-in method name, in documentation order.
func Methods() []string {
	return []string{
		string(MethodExact),
		string(MethodAnnealing),
		string(MethodHybrid),
		string(MethodTwoPhase),
	}
}

// ParseMethod converts a method name (as accepted on the command line)
// into a Method. "anneal" is accepted as shorthand for "annealing".
//
// Parameters:
//   - name: Method name, one of "exact", "annealing", "hybrid", "two-phase"
//
// Returns:
//   - Method: Parsed method
//   - error: ErrUnknownMethod when the name matches no built-in strategy
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case MethodExact, MethodAnnealing, MethodHybrid, MethodTwoPhase:
		return Method(name), nil
	case "anneal":
		return MethodAnnealing, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnknownMethod, name, Methods())
	}
}

// Optimizer matches programs to TPMs using a configured strategy.
//
// An Optimizer is immutable after New: the roster, portfolio, weights, and
// strategy are fixed, and Run may be called repeatedly (and concurrently
// for the deterministic strategies) against the same problem.
type Optimizer struct {
	cfg     Config
	method  Method
	eng     *engine.Engine
	strat   Strategy
	logger  Logger
	metrics MetricsCollector
}

// New creates an Optimizer over the given roster and program portfolio.
//
// Missing configuration values are filled with defaults, the configuration
// and every entity are validated, and fixed assignment pins from both
// sides are merged and cross-checked.
//
// Parameters:
//   - cfg: Configuration (zero value is usable; defaults are applied)
//   - tpms: TPM roster
//   - programs: Program portfolio
//   - method: Optimization strategy to use
//   - opts: Optional dependencies (WithLogger, WithMetrics, ...)
//
// Returns:
//   - *Optimizer: Initialized optimizer
//   - error: Configuration or dataset validation error
//
// Example:
//
//	opt, err := tpmopt.New(tpmopt.DefaultConfig(), tpms, programs, tpmopt.MethodHybrid)
//	if err != nil {
//	    return err
//	}
//	assignments, err := opt.Run(ctx)
func New(cfg Config, tpms []*TPM, programs []*Program, method Method, opts ...Option) (*Optimizer, error) {
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := optimizerOptions{
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.scorer == nil {
		options.scorer = timezone.NewUTCOffsetScorer()
	}

	cfg.ValidateWithWarnings(options.logger)

	eng, err := engine.New(tpms, programs, cfg.Weights, options.scorer)
	if err != nil {
		return nil, err
	}

	o := &Optimizer{
		cfg:     cfg,
		method:  method,
		eng:     eng,
		logger:  options.logger,
		metrics: options.metrics,
	}
	if o.strat, err = o.buildStrategy(options); err != nil {
		return nil, err
	}

	o.logger.Info("optimizer initialized",
		"method", string(method),
		"tpms", len(tpms),
		"programs", len(programs),
		"fixedAssignments", len(eng.FixedAssignments()),
	)

	return o, nil
}

func (o *Optimizer) buildStrategy(options optimizerOptions) (Strategy, error) {
	shared := []strategy.Option{
		strategy.WithLogger(o.logger),
		strategy.WithMetrics(o.metrics),
		strategy.WithStrictFixedAssignments(o.cfg.StrictFixedAssignments),
	}
	switch {
	case options.seedSet:
		shared = append(shared, strategy.WithSeed(options.seed))
	case o.cfg.Seed != 0:
		shared = append(shared, strategy.WithSeed(o.cfg.Seed))
	}
	if options.rng != nil {
		shared = append(shared, strategy.WithRand(options.rng))
	}

	switch o.method {
	case MethodExact:
		return strategy.NewExact(o.eng, strategy.ExactParams{
			MaxSolveTime: o.cfg.Exact.MaxSolveTime,
		}, shared...), nil
	case MethodAnnealing:
		return strategy.NewAnnealing(o.eng, strategy.AnnealingParams{
			InitialTemperature: o.cfg.Annealing.InitialTemperature,
			CoolingRate:        o.cfg.Annealing.CoolingRate,
			MinTemperature:     o.cfg.Annealing.MinTemperature,
			MaxIterations:      o.cfg.Annealing.MaxIterations,
		}, shared...), nil
	case MethodHybrid:
		return strategy.NewHybrid(o.eng, strategy.HybridParams{
			InitialTemperature: o.cfg.Hybrid.InitialTemperature,
			CoolingRate:        o.cfg.Hybrid.CoolingRate,
			MinTemperature:     o.cfg.Hybrid.MinTemperature,
			MaxIterations:      o.cfg.Hybrid.MaxIterations,
			MaxRuntime:         o.cfg.Hybrid.MaxRuntime,
			NoImprovementLimit: o.cfg.Hybrid.NoImprovementLimit,
			MaxNeighborRetries: o.cfg.Hybrid.MaxNeighborRetries,
		}, shared...), nil
	case MethodTwoPhase:
		return strategy.NewTwoPhase(o.eng, shared...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, o.method)
	}
}

// Run executes the configured strategy and returns the resulting
// assignments.
//
// The returned map contains one entry per assigned program; programs with
// no legal TPM are absent rather than misassigned.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines
//
// Returns:
//   - Assignments: Program to TPM mapping
//   - error: Strategy error, or the context's error when cancelled
func (o *Optimizer) Run(ctx context.Context) (Assignments, error) {
	return o.strat.Optimize(ctx)
}

// Method returns the configured optimization method.
func (o *Optimizer) Method() Method {
	return o.method
}

// Engine returns the underlying constraint engine, exposing scoring and
// diagnostics (capacity report, fixed assignment issues, level tiers) for
// callers that render reports.
func (o *Optimizer) Engine() *engine.Engine {
	return o.eng
}
