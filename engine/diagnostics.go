package engine

import (
	"fmt"

	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// CapacityReport summarizes supply versus demand for the whole problem.
type CapacityReport struct {
	// TotalSupply is the summed available time of all TPMs.
	TotalSupply float64

	// TotalDemand is the summed required time of all programs.
	TotalDemand float64

	// PerTPM maps TPM ID to its available time.
	PerTPM map[string]float64

	// FixedLoad maps TPM ID to the load its pins already claim. TPMs
	// without pinned programs are absent.
	FixedLoad map[string]float64

	// OverloadTolerant lists the TPM IDs exempt from the capacity cap.
	OverloadTolerant []string
}

// Feasible reports whether aggregate supply covers aggregate demand. It is
// a necessary condition only; per-TPM constraints can still make a dataset
// infeasible.
func (r CapacityReport) Feasible() bool {
	return r.TotalSupply+capacityEpsilon >= r.TotalDemand
}

// Capacity computes the aggregate capacity picture of the problem,
// including how much of each TPM's time the pins have already spoken for.
func (e *Engine) Capacity() CapacityReport {
	report := CapacityReport{
		PerTPM:    make(map[string]float64, len(e.tpms)),
		FixedLoad: make(map[string]float64),
	}
	for _, id := range e.tpmIDs {
		tpm := e.tpms[id]
		report.TotalSupply += tpm.AvailableTime
		report.PerTPM[id] = tpm.AvailableTime
		if tpm.AllowOverload {
			report.OverloadTolerant = append(report.OverloadTolerant, id)
		}
	}
	for _, id := range e.programIDs {
		report.TotalDemand += e.programs[id].RequiredTime
	}
	for progID, tpmID := range e.fixed {
		report.FixedLoad[tpmID] += e.programs[progID].RequiredTime
	}

	return report
}

// FixedIssue describes a fixed assignment pin that violates a hard
// constraint. Pins are honored regardless unless strict mode is enabled;
// issues exist so callers can surface them.
type FixedIssue struct {
	ProgramID string
	TPMID     string
	Reason    string
}

func (i FixedIssue) String() string {
	return fmt.Sprintf("program %q pinned to tpm %q: %s", i.ProgramID, i.TPMID, i.Reason)
}

// FixedAssignmentIssues checks every merged pin against the conflict,
// level, and capacity constraints and returns one issue per violation.
//
// Capacity is checked against the load implied by the pins alone, in
// sorted program order, so the result is deterministic.
//
// Returns:
//   - []FixedIssue: One entry per violated constraint, empty if all pins
//     are legal
func (e *Engine) FixedAssignmentIssues() []FixedIssue {
	var issues []FixedIssue

	pinnedLoad := make(map[string]float64, len(e.tpms))
	for _, progID := range e.fixed.ProgramIDs() {
		tpmID := e.fixed[progID]
		prog := e.programs[progID]
		tpm := e.tpms[tpmID]

		if tpm.Conflicts.Has(prog.ID) || tpm.Conflicts.Has(prog.Name) {
			issues = append(issues, FixedIssue{progID, tpmID, "program is on the TPM's conflict list"})
		}
		if tpm.Level < prog.RequiredLevel {
			issues = append(issues, FixedIssue{progID, tpmID, fmt.Sprintf(
				"TPM level %d below required level %d", tpm.Level, prog.RequiredLevel)})
		}

		pinnedLoad[tpmID] += prog.RequiredTime
		if !tpm.AllowOverload && pinnedLoad[tpmID] > tpm.AvailableTime+capacityEpsilon {
			issues = append(issues, FixedIssue{progID, tpmID, fmt.Sprintf(
				"pinned load %.2f exceeds available time %.2f", pinnedLoad[tpmID], tpm.AvailableTime)})
		}
	}

	return issues
}

// LevelTier pairs a seniority level with its supply and demand in FTE time.
type LevelTier struct {
	Level int

	// Supply sums the available time of TPMs at exactly this level, net of
	// the load their pins already claim.
	Supply float64

	// Demand sums the required time of unpinned programs requiring exactly
	// this level.
	Demand float64
}

// LevelTiers breaks remaining supply and demand down by seniority level,
// from MinLevel through MaxLevel. Pinned work is netted out on both sides:
// a pinned program neither demands a slot nor leaves its TPM's time free.
// Programs requiring level N can be served by any TPM at level >= N, so a
// tier whose demand exceeds the cumulative supply from the top signals a
// staffing gap.
func (e *Engine) LevelTiers() []LevelTier {
	pinnedLoad := make(map[string]float64)
	for progID, tpmID := range e.fixed {
		pinnedLoad[tpmID] += e.programs[progID].RequiredTime
	}

	tiers := make([]LevelTier, 0, types.MaxLevel-types.MinLevel+1)
	for level := types.MinLevel; level <= types.MaxLevel; level++ {
		tier := LevelTier{Level: level}
		for _, id := range e.tpmIDs {
			tpm := e.tpms[id]
			if tpm.Level != level {
				continue
			}
			if remaining := tpm.AvailableTime - pinnedLoad[id]; remaining > 0 {
				tier.Supply += remaining
			}
		}
		for _, id := range e.programIDs {
			prog := e.programs[id]
			if prog.RequiredLevel == level && e.fixed[id] == "" {
				tier.Demand += prog.RequiredTime
			}
		}
		tiers = append(tiers, tier)
	}

	return tiers
}
