// Package objective defines the multi-objective view of an assignment
// snapshot used by the Pareto-guided hybrid strategy.
//
// The package has two layers. The objective kinds form a closed set of
// scalar evaluators, each scoring one quality dimension of a snapshot
// (larger is better, violations go negative). Independently, a Solution
// condenses a snapshot into a small vector of violation counters (lower is
// better) over which Pareto dominance is defined; the hybrid strategy
// searches that partial order rather than a scalar blend.
package objective

import (
	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// Kind identifies one objective dimension. The set of kinds is closed and
// selected explicitly by the caller; there is no open-ended registration.
type Kind int

const (
	// KindCapacity penalizes total overload across TPMs that do not
	// tolerate overload.
	KindCapacity Kind = iota

	// KindUtilization penalizes utilization shortfall below the target on
	// TPMs carrying any load.
	KindUtilization

	// KindTimezone rewards near-timezone assignments and penalizes ones
	// beyond the maximum spread.
	KindTimezone

	// KindPortfolio penalizes portfolio diversity beyond the cap and
	// rewards exactly hitting the diversity target.
	KindPortfolio
)

// Kinds lists every objective kind in evaluation order.
var Kinds = []Kind{KindCapacity, KindUtilization, KindTimezone, KindPortfolio}

// Objective weighting constants.
const (
	overloadFactor  = 100.0
	shortfallFactor = 5.0
	excessFactor    = 2.0
	diversityBonus  = 1.0
	nearTimezone    = 1.0
	okTimezone      = 0.5
	farTimezone     = -1.0
	capacityEpsilon = 1e-9
)

// String returns the kind's short name.
func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindUtilization:
		return "utilization"
	case KindTimezone:
		return "timezone"
	case KindPortfolio:
		return "portfolio"
	default:
		return "unknown"
	}
}

// Class separates objectives that gate feasibility from those that only
// rank solutions.
type Class int

const (
	// Hard objectives gate feasibility.
	Hard Class = iota

	// Soft objectives rank solutions but never make one infeasible.
	Soft
)

// Class returns whether the kind gates feasibility.
func (k Kind) Class() Class {
	if k == KindCapacity {
		return Hard
	}

	return Soft
}

// Evaluate scores one quality dimension of a snapshot. Larger is better;
// constraint violations drive the score negative.
//
// Parameters:
//   - eng: Constraint engine providing the problem definition
//   - asn: Assignment snapshot to score (may be partial)
//
// Returns:
//   - float64: The kind's scalar score for this snapshot
func (k Kind) Evaluate(eng *engine.Engine, asn types.Assignments) float64 {
	switch k {
	case KindCapacity:
		return evaluateCapacity(eng, asn)
	case KindUtilization:
		return evaluateUtilization(eng, asn)
	case KindTimezone:
		return evaluateTimezone(eng, asn)
	case KindPortfolio:
		return evaluatePortfolio(eng, asn)
	default:
		return 0
	}
}

func evaluateCapacity(eng *engine.Engine, asn types.Assignments) float64 {
	score := 0.0
	for _, tpm := range eng.TPMs() {
		if tpm.AllowOverload {
			continue
		}
		if overload := eng.Load(tpm.ID, asn) - tpm.AvailableTime; overload > capacityEpsilon {
			score -= overload * overloadFactor
		}
	}

	return score
}

func evaluateUtilization(eng *engine.Engine, asn types.Assignments) float64 {
	score := 0.0
	for _, tpm := range eng.TPMs() {
		load := eng.Load(tpm.ID, asn)
		if load == 0 || tpm.AvailableTime <= 0 {
			continue
		}
		if shortfall := types.MinUtilization - load/tpm.AvailableTime; shortfall > 0 {
			score -= shortfall * shortfallFactor
		}
	}

	return score
}

func evaluateTimezone(eng *engine.Engine, asn types.Assignments) float64 {
	tz := eng.TimezoneScorer()
	score := 0.0
	for progID, tpmID := range asn {
		prog, tpm := eng.Program(progID), eng.TPM(tpmID)
		if prog == nil || tpm == nil {
			continue
		}
		switch diff := tz.DifferenceHours(tpm.Timezone, prog.Timezone); {
		case diff <= types.PreferredTimezoneSpread:
			score += nearTimezone
		case diff <= types.MaxTimezoneSpread:
			score += okTimezone
		default:
			score += farTimezone
		}
	}

	return score
}

func evaluatePortfolio(eng *engine.Engine, asn types.Assignments) float64 {
	score := 0.0
	for _, tpm := range eng.TPMs() {
		count := eng.PortfolioCount(tpm.ID, asn)
		if excess := count - types.MaxPortfolios; excess > 0 {
			score -= float64(excess) * excessFactor
		}
		if count == types.TargetPortfolioDiversity {
			score += diversityBonus
		}
	}

	return score
}

// Metrics is the violation-counter vector a Solution is compared on. Every
// field is a non-negative count where lower is better.
type Metrics struct {
	UnusedTPMs          int
	OverloadedTPMs      int
	TimezoneViolations  int
	PortfolioViolations int
}

func (m Metrics) vector() [4]int {
	return [4]int{m.UnusedTPMs, m.OverloadedTPMs, m.TimezoneViolations, m.PortfolioViolations}
}

// Solution pairs an assignment snapshot with its evaluated metric vector.
//
// Solutions are value types; Evaluate clones nothing, so callers that keep
// a Solution across mutations of the snapshot must clone the snapshot
// themselves.
type Solution struct {
	Assignments types.Assignments
	Metrics     Metrics

	fixedOK bool
}

// IsFeasible reports whether the snapshot honors every fixed pin and
// overloads no overload-intolerant TPM.
func (s Solution) IsFeasible() bool {
	return s.fixedOK && s.Metrics.OverloadedTPMs == 0
}

// Dominates reports whether s is at least as good as other on every metric
// and strictly better on at least one. It is a strict partial order:
// irreflexive, asymmetric, and transitive.
func (s Solution) Dominates(other Solution) bool {
	a, b := s.Metrics.vector(), other.Metrics.vector()

	strict := false
	for i := range a {
		switch {
		case a[i] > b[i]:
			return false
		case a[i] < b[i]:
			strict = true
		}
	}

	return strict
}

// ImprovementCount returns how many metrics s strictly improves over
// other. The hybrid strategy uses this as the acceptance magnitude for
// non-dominating candidates.
func (s Solution) ImprovementCount(other Solution) int {
	a, b := s.Metrics.vector(), other.Metrics.vector()

	count := 0
	for i := range a {
		if a[i] < b[i] {
			count++
		}
	}

	return count
}

// WorsenedCount returns how many metrics s is strictly worse on than
// other.
func (s Solution) WorsenedCount(other Solution) int {
	return other.ImprovementCount(s)
}

// Evaluate condenses a snapshot into its Solution metric vector.
//
// Parameters:
//   - eng: Constraint engine providing the problem definition
//   - asn: Assignment snapshot to score (may be partial)
//
// Returns:
//   - Solution: The snapshot with its metric vector and pin check
func Evaluate(eng *engine.Engine, asn types.Assignments) Solution {
	s := Solution{
		Assignments: asn,
		fixedOK:     eng.ValidateFixedAssignments(asn),
	}

	for _, tpm := range eng.TPMs() {
		load := eng.Load(tpm.ID, asn)

		if load == 0 {
			s.Metrics.UnusedTPMs++
		}
		if !tpm.AllowOverload && load > tpm.AvailableTime+capacityEpsilon {
			s.Metrics.OverloadedTPMs++
		}
		if eng.PortfolioCount(tpm.ID, asn) > types.MaxPortfolios {
			s.Metrics.PortfolioViolations++
		}
	}

	tz := eng.TimezoneScorer()
	for progID, tpmID := range asn {
		prog, tpm := eng.Program(progID), eng.TPM(tpmID)
		if prog == nil || tpm == nil {
			continue
		}
		if tz.DifferenceHours(tpm.Timezone, prog.Timezone) > types.MaxTimezoneSpread {
			s.Metrics.TimezoneViolations++
		}
	}

	return s
}
