package strategy

import (
	"math/rand/v2"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/internal/logger"
	"github.com/motiteux/tpm-assignment-optimizer/internal/metrics"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// Option configures a strategy.
type Option func(*options)

type options struct {
	logger  types.Logger
	metrics types.MetricsCollector
	rng     *rand.Rand
	seed    uint64
	seedSet bool
	strict  bool
}

// WithLogger sets the logger used for search progress and diagnostics.
// Defaults to a no-op logger.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Defaults to a no-op collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSeed seeds the strategy's pseudorandom source. Without it the seed is
// derived from the dataset, so repeated runs over the same input reproduce
// the same result.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithRand replaces the pseudorandom source entirely. Takes precedence over
// WithSeed. Intended for tests that need full control over the sequence.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithStrictFixedAssignments makes the strategy return
// types.ErrInvalidFixedAssignment when any fixed pin violates a hard
// constraint, instead of honoring the pin and reporting diagnostics.
func WithStrictFixedAssignments(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// newOptions applies opts over defaults and finalizes the random source.
func newOptions(eng *engine.Engine, opts []Option) options {
	o := options{
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := o.seed
		if !o.seedSet {
			seed = datasetSeed(eng)
		}
		o.rng = rand.New(rand.NewPCG(seed, seed))
	}

	return o
}

// datasetSeed derives a deterministic seed from the sorted entity IDs, so
// two runs over the same dataset walk the same search trajectory.
func datasetSeed(eng *engine.Engine) uint64 {
	h := xxh3.New()
	for _, id := range eng.TPMIDs() {
		_, _ = h.WriteString(id)
		_, _ = h.WriteString("\x00")
	}
	_, _ = h.WriteString("\x01")
	for _, id := range eng.ProgramIDs() {
		_, _ = h.WriteString(id)
		_, _ = h.WriteString("\x00")
	}

	return h.Sum64()
}

// checkFixed enforces the strict fixed-assignment policy shared by all
// strategies.
func checkFixed(eng *engine.Engine, o options) error {
	issues := eng.FixedAssignmentIssues()
	for _, issue := range issues {
		o.logger.Warn("fixed assignment violates a hard constraint",
			"program", issue.ProgramID, "tpm", issue.TPMID, "reason", issue.Reason)
	}
	if o.strict && len(issues) > 0 {
		return types.ErrInvalidFixedAssignment
	}

	return nil
}

// unpinnedPrograms returns the sorted IDs of programs without a fixed pin.
func unpinnedPrograms(eng *engine.Engine) []string {
	var ids []string
	for _, id := range eng.ProgramIDs() {
		if eng.FixedFor(id) == "" {
			ids = append(ids, id)
		}
	}

	return ids
}

// constructionOrder returns the unpinned program IDs hardest-first: by
// complexity descending, then required time descending, then ID for
// determinism.
func constructionOrder(eng *engine.Engine) []string {
	ids := unpinnedPrograms(eng)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := eng.Program(ids[i]), eng.Program(ids[j])
		if a.ComplexityScore != b.ComplexityScore {
			return a.ComplexityScore > b.ComplexityScore
		}
		if a.RequiredTime != b.RequiredTime {
			return a.RequiredTime > b.RequiredTime
		}

		return ids[i] < ids[j]
	})

	return ids
}

// qualityCounts tallies the solution-quality counters reported through
// SolutionMetrics.
func qualityCounts(eng *engine.Engine, asn types.Assignments) (unused, overloaded, tzViolations, portfolioViolations int) {
	tz := eng.TimezoneScorer()

	for _, tpmID := range eng.TPMIDs() {
		tpm := eng.TPM(tpmID)
		load := eng.Load(tpmID, asn)
		if load == 0 {
			unused++
		}
		if !tpm.AllowOverload && load > tpm.AvailableTime {
			overloaded++
		}
		if eng.PortfolioCount(tpmID, asn) > types.MaxPortfolios {
			portfolioViolations++
		}
	}

	for progID, tpmID := range asn {
		prog, tpm := eng.Program(progID), eng.TPM(tpmID)
		if prog == nil || tpm == nil {
			continue
		}
		if tz.DifferenceHours(tpm.Timezone, prog.Timezone) > types.MaxTimezoneSpread {
			tzViolations++
		}
	}

	return unused, overloaded, tzViolations, portfolioViolations
}

// reportSolution pushes coverage and quality counters for a finished run.
func reportSolution(eng *engine.Engine, o options, asn types.Assignments) {
	o.metrics.RecordAssignmentCoverage(len(asn), len(eng.ProgramIDs()))
	unused, overloaded, tzv, pv := qualityCounts(eng, asn)
	o.metrics.RecordSolutionQuality(unused, overloaded, tzv, pv)
}
