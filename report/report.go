// Package report turns an assignment snapshot into human-readable output.
//
// A Report is built once from the engine and a final snapshot, then rendered
// to any writer. Rendering is deterministic: rows follow sorted TPM and
// program order, so diffs between two runs reflect real assignment changes.
package report

import (
	"math"
	"sort"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/objective"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// TPMRow summarizes one TPM's resulting workload.
type TPMRow struct {
	ID            string
	Name          string
	Level         int
	Timezone      string
	Load          float64
	AvailableTime float64
	AllowOverload bool

	// Programs lists the assigned program ids in sorted order.
	Programs []string

	// Portfolios counts the distinct portfolios the TPM ended up carrying.
	Portfolios int
}

// Utilization returns load over available time, or 0 for an unstaffable TPM.
func (r TPMRow) Utilization() float64 {
	if r.AvailableTime <= 0 {
		return 0
	}

	return r.Load / r.AvailableTime
}

// Overloaded reports whether the row exceeds its capacity and does not
// tolerate overload.
func (r TPMRow) Overloaded() bool {
	return !r.AllowOverload && r.Load > r.AvailableTime+1e-9
}

// AssignmentRow describes one program's placement.
type AssignmentRow struct {
	ProgramID   string
	ProgramName string
	TPMID       string
	TPMName     string

	// Fixed marks pinned assignments that the optimizer had no say in.
	Fixed bool

	// TimezoneGapHours is the spread between the TPM and the program's
	// stakeholder barycenter.
	TimezoneGapHours float64

	// Score is the weighted pair score of this placement.
	Score float64
}

// Summary aggregates solution quality for the whole run.
type Summary struct {
	TotalPrograms    int
	AssignedPrograms int
	TotalTPMs        int
	UnusedTPMs       int

	// MeanUtilization averages load/available over TPMs with capacity.
	MeanUtilization float64

	// AvgTimezoneSpread averages the timezone gap over placed programs.
	AvgTimezoneSpread float64

	// AvgPortfolioDiversity averages distinct portfolios over TPMs that
	// carry at least one program.
	AvgPortfolioDiversity float64

	// OverloadedTPMs counts TPMs past capacity without overload tolerance.
	OverloadedTPMs int

	// TimezoneViolations counts assignments beyond the maximum spread.
	TimezoneViolations int

	// PortfolioViolations sums portfolio counts past the cap per TPM.
	PortfolioViolations int
}

// TimezoneRespect returns the fraction of placed programs within the
// maximum timezone spread.
func (s Summary) TimezoneRespect() float64 {
	if s.AssignedPrograms == 0 {
		return 1
	}

	return float64(s.AssignedPrograms-s.TimezoneViolations) / float64(s.AssignedPrograms)
}

// Coverage returns the fraction of programs that received a TPM.
func (s Summary) Coverage() float64 {
	if s.TotalPrograms == 0 {
		return 1
	}

	return float64(s.AssignedPrograms) / float64(s.TotalPrograms)
}

// ObjectiveScore is one objective dimension's scalar score for the run.
// Larger is better; violations drive it negative.
type ObjectiveScore struct {
	Name  string
	Score float64
}

// Report is the full rendered view of one optimization run.
type Report struct {
	Method string

	TPMs        []TPMRow
	Assignments []AssignmentRow

	// Objectives holds the scalar objective scores in evaluation order.
	Objectives []ObjectiveScore

	// Unassigned lists program ids that no legal TPM could take.
	Unassigned []string

	// FixedIssues carries pins that violate a hard constraint.
	FixedIssues []engine.FixedIssue

	Summary Summary
}

// Build assembles a Report from a finished snapshot.
//
// Parameters:
//   - eng: Constraint engine the snapshot was optimized against
//   - asn: Final assignment snapshot
//   - method: Strategy name to display, may be empty
//
// Returns:
//   - *Report: Deterministic, render-ready view of the result
func Build(eng *engine.Engine, asn types.Assignments, method string) *Report {
	rpt := &Report{Method: method}
	tz := eng.TimezoneScorer()

	capacityTPMs, usedTPMs := 0, 0
	utilizationSum, diversitySum := 0.0, 0.0

	for _, tpmID := range eng.TPMIDs() {
		tpm := eng.TPM(tpmID)
		row := TPMRow{
			ID:            tpm.ID,
			Name:          tpm.Name,
			Level:         tpm.Level,
			Timezone:      tpm.Timezone,
			Load:          eng.Load(tpmID, asn),
			AvailableTime: tpm.AvailableTime,
			AllowOverload: tpm.AllowOverload,
			Programs:      asn.ProgramsFor(tpmID),
			Portfolios:    eng.PortfolioCount(tpmID, asn),
		}
		rpt.TPMs = append(rpt.TPMs, row)

		rpt.Summary.TotalTPMs++
		if row.AvailableTime > 0 {
			capacityTPMs++
			utilizationSum += row.Utilization()
		}
		if len(row.Programs) == 0 {
			rpt.Summary.UnusedTPMs++
		} else {
			usedTPMs++
			diversitySum += float64(row.Portfolios)
		}
		if row.Overloaded() {
			rpt.Summary.OverloadedTPMs++
		}
		if excess := row.Portfolios - types.MaxPortfolios; excess > 0 {
			rpt.Summary.PortfolioViolations += excess
		}
	}

	gapSum := 0.0
	for _, progID := range eng.ProgramIDs() {
		rpt.Summary.TotalPrograms++

		tpmID, ok := asn[progID]
		if !ok {
			rpt.Unassigned = append(rpt.Unassigned, progID)

			continue
		}
		rpt.Summary.AssignedPrograms++

		prog := eng.Program(progID)
		tpm := eng.TPM(tpmID)
		gap := tz.DifferenceHours(tpm.Timezone, prog.Timezone)
		gapSum += gap
		if gap > types.MaxTimezoneSpread {
			rpt.Summary.TimezoneViolations++
		}

		rpt.Assignments = append(rpt.Assignments, AssignmentRow{
			ProgramID:        progID,
			ProgramName:      prog.Name,
			TPMID:            tpmID,
			TPMName:          tpm.Name,
			Fixed:            eng.FixedFor(progID) == tpmID,
			TimezoneGapHours: gap,
			Score:            eng.PairScore(progID, tpmID, asn),
		})
	}
	sort.Strings(rpt.Unassigned)

	if capacityTPMs > 0 {
		rpt.Summary.MeanUtilization = utilizationSum / float64(capacityTPMs)
	}
	if rpt.Summary.AssignedPrograms > 0 {
		rpt.Summary.AvgTimezoneSpread = gapSum / float64(rpt.Summary.AssignedPrograms)
	}
	if usedTPMs > 0 {
		rpt.Summary.AvgPortfolioDiversity = diversitySum / float64(usedTPMs)
	}

	for _, kind := range objective.Kinds {
		rpt.Objectives = append(rpt.Objectives, ObjectiveScore{
			Name:  kind.String(),
			Score: kind.Evaluate(eng, asn),
		})
	}
	rpt.FixedIssues = eng.FixedAssignmentIssues()

	return rpt
}

// abbreviate shortens a display name to max runes, keeping a trailing
// ellipsis so truncation is visible.
func abbreviate(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	if max <= 1 {
		return string(runes[:max])
	}

	return string(runes[:max-1]) + "…"
}

// percent renders a ratio as a whole percentage, clamped at 0.
func percent(ratio float64) float64 {
	return math.Max(0, ratio*100)
}
