package types

// MetricsCollector defines methods for recording optimization metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Strategies call these methods on the hot path of their search loops.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	SolveMetrics
	SolutionMetrics
}

// SolveMetrics defines metrics for strategy execution.
type SolveMetrics interface {
	// RecordSolveDuration records the wall-clock time of one full
	// optimization run.
	//
	// Parameters:
	//   - strategy: Strategy name ("exact", "anneal", "hybrid", "two-phase")
	//   - seconds: Run duration in seconds
	RecordSolveDuration(strategy string, seconds float64)

	// RecordIterations records the iteration count a search-based strategy
	// performed before stopping.
	RecordIterations(strategy string, iterations int)

	// RecordMoveOutcome records whether a trial neighbor was accepted.
	//
	// Parameters:
	//   - strategy: Strategy name
	//   - accepted: true if the neighbor replaced the current state
	RecordMoveOutcome(strategy string, accepted bool)
}

// SolutionMetrics defines metrics describing the quality of a final solution.
type SolutionMetrics interface {
	// RecordAssignmentCoverage records how many programs received a TPM.
	RecordAssignmentCoverage(assigned, total int)

	// RecordSolutionQuality records the multi-objective metric vector of
	// the final solution (all values lower-is-better).
	RecordSolutionQuality(unusedTPMs, overloadedTPMs, timezoneViolations, portfolioViolations int)
}
