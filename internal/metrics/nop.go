// Package metrics provides MetricsCollector implementations for the
// optimizer.
package metrics

import "github.com/motiteux/tpm-assignment-optimizer/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	collector := metrics.NewNop()
//	opt := tpmopt.New(cfg, tpms, programs, method, tpmopt.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SolveMetrics implementation

// RecordSolveDuration discards the solve duration metric.
func (n *NopMetrics) RecordSolveDuration(_ /* strategy */ string, _ /* seconds */ float64) {
	// No-op
}

// RecordIterations discards the iteration count metric.
func (n *NopMetrics) RecordIterations(_ /* strategy */ string, _ /* iterations */ int) {
	// No-op
}

// RecordMoveOutcome discards the move outcome metric.
func (n *NopMetrics) RecordMoveOutcome(_ /* strategy */ string, _ /* accepted */ bool) {
	// No-op
}

// SolutionMetrics implementation

// RecordAssignmentCoverage discards the coverage metric.
func (n *NopMetrics) RecordAssignmentCoverage(_ /* assigned */, _ /* total */ int) {
	// No-op
}

// RecordSolutionQuality discards the solution quality metric.
func (n *NopMetrics) RecordSolutionQuality(_ /* unusedTPMs */, _ /* overloadedTPMs */, _ /* timezoneViolations */, _ /* portfolioViolations */ int) {
	// No-op
}
