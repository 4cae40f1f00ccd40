package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNopMetrics(t *testing.T) {
	m := NewNop()

	// All methods must be safe to call and do nothing.
	m.RecordSolveDuration("annealing", 1.5)
	m.RecordIterations("annealing", 10000)
	m.RecordMoveOutcome("annealing", true)
	m.RecordAssignmentCoverage(9, 10)
	m.RecordSolutionQuality(0, 1, 2, 0)
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "tpmopt_test")

	m.RecordSolveDuration("exact", 0.25)
	m.RecordIterations("exact", 1)
	m.RecordMoveOutcome("hybrid", true)
	m.RecordMoveOutcome("hybrid", false)
	m.RecordAssignmentCoverage(8, 10)
	m.RecordSolutionQuality(1, 0, 2, 1)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]struct{}, len(families))
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}
	require.Contains(t, names, "tpmopt_test_solver_duration_seconds")
	require.Contains(t, names, "tpmopt_test_solver_moves_total")
	require.Contains(t, names, "tpmopt_test_solution_coverage_ratio")
	require.Contains(t, names, "tpmopt_test_solution_violations")
}

func TestPrometheusCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Two collectors on one registry must not panic on registration.
	a := NewPrometheus(reg, "tpmopt_test")
	b := NewPrometheus(reg, "tpmopt_test")
	a.RecordSolveDuration("exact", 0.1)
	b.RecordSolveDuration("exact", 0.2)
}
