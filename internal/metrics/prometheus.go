package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	solveDuration    *prometheus.HistogramVec
	iterations       *prometheus.HistogramVec
	moveOutcomes     *prometheus.CounterVec
	coverageRatio    prometheus.Gauge
	programsAssigned prometheus.Gauge
	qualityGauges    *prometheus.GaugeVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "tpmopt" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "tpmopt"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

// ensureRegistered lazily registers collectors so constructing the collector
// never panics on duplicate registration in tests.
func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.solveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "Wall-clock optimization run durations in seconds by strategy.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"strategy"})

		p.iterations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "iterations",
			Help:      "Search iterations consumed per run by strategy.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}, []string{"strategy"})

		p.moveOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "moves_total",
			Help:      "Candidate moves considered by strategy and outcome.",
		}, []string{"strategy", "outcome"})

		p.coverageRatio = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "solution",
			Name:      "coverage_ratio",
			Help:      "Fraction of programs assigned in the last solution.",
		})

		p.programsAssigned = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "solution",
			Name:      "programs_assigned",
			Help:      "Number of programs assigned in the last solution.",
		})

		p.qualityGauges = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "solution",
			Name:      "violations",
			Help:      "Soft-constraint violation counts of the last solution by kind.",
		}, []string{"kind"})

		for _, c := range []prometheus.Collector{
			p.solveDuration, p.iterations, p.moveOutcomes,
			p.coverageRatio, p.programsAssigned, p.qualityGauges,
		} {
			// Ignore AlreadyRegisteredError from shared registries.
			_ = p.reg.Register(c)
		}
	})
}

// RecordSolveDuration records a completed optimization run's duration.
func (p *PrometheusCollector) RecordSolveDuration(strategy string, seconds float64) {
	p.ensureRegistered()
	p.solveDuration.WithLabelValues(strategy).Observe(seconds)
}

// RecordIterations records the iterations a run consumed.
func (p *PrometheusCollector) RecordIterations(strategy string, iterations int) {
	p.ensureRegistered()
	p.iterations.WithLabelValues(strategy).Observe(float64(iterations))
}

// RecordMoveOutcome counts an accepted or rejected candidate move.
func (p *PrometheusCollector) RecordMoveOutcome(strategy string, accepted bool) {
	p.ensureRegistered()
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	p.moveOutcomes.WithLabelValues(strategy, outcome).Inc()
}

// RecordAssignmentCoverage records how many programs the last solution
// assigned.
func (p *PrometheusCollector) RecordAssignmentCoverage(assigned, total int) {
	p.ensureRegistered()
	p.programsAssigned.Set(float64(assigned))
	if total > 0 {
		p.coverageRatio.Set(float64(assigned) / float64(total))
	}
}

// RecordSolutionQuality records soft-constraint violation counts of the
// last solution.
func (p *PrometheusCollector) RecordSolutionQuality(unusedTPMs, overloadedTPMs, timezoneViolations, portfolioViolations int) {
	p.ensureRegistered()
	p.qualityGauges.WithLabelValues("unused_tpms").Set(float64(unusedTPMs))
	p.qualityGauges.WithLabelValues("overloaded_tpms").Set(float64(overloadedTPMs))
	p.qualityGauges.WithLabelValues("timezone").Set(float64(timezoneViolations))
	p.qualityGauges.WithLabelValues("portfolio").Set(float64(portfolioViolations))
}
