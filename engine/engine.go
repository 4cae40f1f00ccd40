// Package engine implements the constraint and scoring engine shared by all
// optimization strategies.
//
// The engine owns the immutable problem definition (TPM roster, program
// portfolio, fixed assignment pins) and answers two questions about any
// candidate pairing: is it legal under the hard constraints, and how good is
// it under the weighted soft score. Strategies hold a *Engine and never
// mutate it; all search state lives in the Assignments snapshots they pass
// in.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// Engine evaluates hard constraints and soft scores over a fixed problem
// definition.
//
// An Engine is immutable after New and safe for concurrent use.
type Engine struct {
	tpms     map[string]*types.TPM
	programs map[string]*types.Program

	// fixed maps program ID to the TPM it is pinned to, merged from both
	// the TPM side (FixedProgram) and the program side (FixedTPM).
	fixed types.Assignments

	// tpmIDs and programIDs are the sorted key sets, precomputed so every
	// strategy iterates entities in the same deterministic order.
	tpmIDs     []string
	programIDs []string

	weights types.Weights
	tz      types.TimezoneScorer
}

// New creates a constraint engine over the given roster and portfolio.
//
// Every entity is validated, duplicate IDs are rejected, and fixed
// assignment pins from both sides are merged and cross-checked. A pin that
// references an unknown entity, or a TPM and program that pin each other
// inconsistently, yields types.ErrInvalidFixedAssignment.
//
// Parameters:
//   - tpms: TPM roster (at least one)
//   - programs: Program portfolio (at least one)
//   - weights: Soft score weights
//   - tz: Timezone compatibility scorer
//
// Returns:
//   - *Engine: Initialized engine
//   - error: Validation error describing the first problem found
func New(tpms []*types.TPM, programs []*types.Program, weights types.Weights, tz types.TimezoneScorer) (*Engine, error) {
	if len(tpms) == 0 {
		return nil, types.ErrNoTPMs
	}
	if len(programs) == 0 {
		return nil, types.ErrNoPrograms
	}

	e := &Engine{
		tpms:     make(map[string]*types.TPM, len(tpms)),
		programs: make(map[string]*types.Program, len(programs)),
		fixed:    make(types.Assignments),
		weights:  weights,
		tz:       tz,
	}

	for _, tpm := range tpms {
		if err := tpm.Validate(); err != nil {
			return nil, fmt.Errorf("tpm %q: %w", tpm.ID, err)
		}
		if _, exists := e.tpms[tpm.ID]; exists {
			return nil, fmt.Errorf("duplicate tpm id %q", tpm.ID)
		}
		e.tpms[tpm.ID] = tpm
		e.tpmIDs = append(e.tpmIDs, tpm.ID)
	}
	for _, prog := range programs {
		if err := prog.Validate(); err != nil {
			return nil, fmt.Errorf("program %q: %w", prog.ID, err)
		}
		if _, exists := e.programs[prog.ID]; exists {
			return nil, fmt.Errorf("duplicate program id %q", prog.ID)
		}
		e.programs[prog.ID] = prog
		e.programIDs = append(e.programIDs, prog.ID)
	}

	sort.Strings(e.tpmIDs)
	sort.Strings(e.programIDs)

	if err := e.mergeFixedAssignments(); err != nil {
		return nil, err
	}

	return e, nil
}

// mergeFixedAssignments reconciles TPM-side and program-side pins into the
// canonical program->TPM map.
func (e *Engine) mergeFixedAssignments() error {
	for _, id := range e.programIDs {
		prog := e.programs[id]
		if prog.FixedTPM == "" {
			continue
		}
		if _, ok := e.tpms[prog.FixedTPM]; !ok {
			return fmt.Errorf("program %q pinned to unknown tpm %q: %w",
				prog.ID, prog.FixedTPM, types.ErrInvalidFixedAssignment)
		}
		e.fixed[prog.ID] = prog.FixedTPM
	}

	for _, id := range e.tpmIDs {
		tpm := e.tpms[id]
		if tpm.FixedProgram == "" {
			continue
		}
		if _, ok := e.programs[tpm.FixedProgram]; !ok {
			return fmt.Errorf("tpm %q pinned to unknown program %q: %w",
				tpm.ID, tpm.FixedProgram, types.ErrInvalidFixedAssignment)
		}
		if other, ok := e.fixed[tpm.FixedProgram]; ok && other != tpm.ID {
			return fmt.Errorf("program %q pinned to both %q and %q: %w",
				tpm.FixedProgram, other, tpm.ID, types.ErrInvalidFixedAssignment)
		}
		e.fixed[tpm.FixedProgram] = tpm.ID
	}

	return nil
}

// TPMIDs returns all TPM IDs in sorted order.
func (e *Engine) TPMIDs() []string {
	return e.tpmIDs
}

// ProgramIDs returns all program IDs in sorted order.
func (e *Engine) ProgramIDs() []string {
	return e.programIDs
}

// TPM returns the TPM with the given ID, or nil if unknown.
func (e *Engine) TPM(id string) *types.TPM {
	return e.tpms[id]
}

// Program returns the program with the given ID, or nil if unknown.
func (e *Engine) Program(id string) *types.Program {
	return e.programs[id]
}

// TPMs returns the full roster in sorted ID order.
func (e *Engine) TPMs() []*types.TPM {
	tpms := make([]*types.TPM, 0, len(e.tpmIDs))
	for _, id := range e.tpmIDs {
		tpms = append(tpms, e.tpms[id])
	}

	return tpms
}

// Programs returns the full portfolio in sorted ID order.
func (e *Engine) Programs() []*types.Program {
	programs := make([]*types.Program, 0, len(e.programIDs))
	for _, id := range e.programIDs {
		programs = append(programs, e.programs[id])
	}

	return programs
}

// Weights returns the soft score weights in effect.
func (e *Engine) Weights() types.Weights {
	return e.weights
}

// TimezoneScorer returns the timezone scorer in effect.
func (e *Engine) TimezoneScorer() types.TimezoneScorer {
	return e.tz
}

// FixedAssignments returns a copy of the merged program->TPM pins.
func (e *Engine) FixedAssignments() types.Assignments {
	return e.fixed.Clone()
}

// FixedFor returns the TPM a program is pinned to, or "" if unpinned.
func (e *Engine) FixedFor(progID string) string {
	return e.fixed[progID]
}

// Load returns the total required time of the programs a snapshot assigns
// to the given TPM.
//
// Parameters:
//   - tpmID: TPM to measure
//   - current: Assignment snapshot (may be partial)
//
// Returns:
//   - float64: Summed required time in FTE fractions
func (e *Engine) Load(tpmID string, current types.Assignments) float64 {
	load := 0.0
	for progID, assignee := range current {
		if assignee != tpmID {
			continue
		}
		if prog, ok := e.programs[progID]; ok {
			load += prog.RequiredTime
		}
	}

	return load
}

// ValidateAssignment reports whether assigning a program to a TPM is legal
// under the hard constraints, given the rest of the snapshot.
//
// Hard constraints checked, in order:
//   - Both entities exist
//   - A pin on the program is respected (pinned elsewhere means invalid)
//   - The program is not in the TPM's conflict list
//   - The TPM's level meets the program's required level
//   - Adding the program keeps the TPM within its available time, unless
//     the TPM is overload-tolerant
//   - Adding the program keeps the TPM's distinct portfolio tags within
//     the diversity cap
//
// The program's own entry in current is ignored when computing load and
// portfolio diversity, so the check is stable whether or not the program
// is already placed.
//
// Parameters:
//   - progID: Program to place
//   - tpmID: Candidate TPM
//   - current: Assignment snapshot providing the TPM's existing load
//
// Returns:
//   - bool: true if the pairing satisfies every hard constraint
func (e *Engine) ValidateAssignment(progID, tpmID string, current types.Assignments) bool {
	prog, ok := e.programs[progID]
	if !ok {
		return false
	}
	tpm, ok := e.tpms[tpmID]
	if !ok {
		return false
	}

	if pinned := e.fixed[progID]; pinned != "" && pinned != tpmID {
		return false
	}

	if tpm.Conflicts.Has(prog.ID) || tpm.Conflicts.Has(prog.Name) {
		return false
	}

	if tpm.Level < prog.RequiredLevel {
		return false
	}

	if !tpm.AllowOverload {
		load := 0.0
		for otherID, assignee := range current {
			if assignee != tpmID || otherID == progID {
				continue
			}
			if other, ok := e.programs[otherID]; ok {
				load += other.RequiredTime
			}
		}
		if load+prog.RequiredTime > tpm.AvailableTime+capacityEpsilon {
			return false
		}
	}

	if prog.Portfolio != "" && !e.carriesPortfolio(tpm.ID, prog, current) {
		if e.PortfolioCount(tpmID, current)-e.ownPortfolioContribution(tpm.ID, prog, current) >= types.MaxPortfolios {
			return false
		}
	}

	return true
}

// carriesPortfolio reports whether the TPM already hosts the program's
// portfolio tag through another assignment in the snapshot.
func (e *Engine) carriesPortfolio(tpmID string, prog *types.Program, current types.Assignments) bool {
	for otherID, assignee := range current {
		if assignee != tpmID || otherID == prog.ID {
			continue
		}
		if other, ok := e.programs[otherID]; ok && other.Portfolio == prog.Portfolio {
			return true
		}
	}

	return false
}

// ownPortfolioContribution returns 1 when the program's own (pre-existing)
// entry in the snapshot is the only contributor of its portfolio tag on the
// TPM, so re-validating an already-placed program does not double count.
func (e *Engine) ownPortfolioContribution(tpmID string, prog *types.Program, current types.Assignments) int {
	if current[prog.ID] != tpmID {
		return 0
	}

	return 1
}

// capacityEpsilon absorbs float accumulation error when summing required
// times, so three 0.1 programs fit a 0.3 budget.
const capacityEpsilon = 1e-9

// ValidateFixedAssignments reports whether a snapshot honors every fixed
// pin: each pinned program is present and mapped to its pinned TPM.
func (e *Engine) ValidateFixedAssignments(current types.Assignments) bool {
	for progID, tpmID := range e.fixed {
		if current[progID] != tpmID {
			return false
		}
	}

	return true
}

// AssignmentScore computes the weighted soft score of assigning a program
// to a TPM, given the rest of the snapshot.
//
// Illegal pairings (per ValidateAssignment) score negative infinity so
// greedy loops can take the max without a separate legality branch.
//
// Components:
//   - Timezone: barycentric fit of the TPM's zone against the program's
//     zone plus stakeholder zones
//   - Skill: fraction of required skills the TPM covers
//   - Level: 1.0 exact, 0.7 one above, 0.4 further above
//   - Portfolio: 1.0 when the TPM already carries the portfolio, else 0.5
//   - Preference: a flat 0.2 when the program is on the TPM's desired list
//
// Returns:
//   - float64: Weighted score, or math.Inf(-1) for illegal pairings
func (e *Engine) AssignmentScore(progID, tpmID string, current types.Assignments) float64 {
	if !e.ValidateAssignment(progID, tpmID, current) {
		return math.Inf(-1)
	}

	return e.PairScore(progID, tpmID, current)
}

// PairScore computes the weighted soft score without the legality check.
//
// Penalty-based searches use this to rate assignments inside infeasible
// intermediate states, where constraint violations are charged separately.
// Unknown entities score zero.
func (e *Engine) PairScore(progID, tpmID string, current types.Assignments) float64 {
	prog, ok := e.programs[progID]
	if !ok {
		return 0
	}
	tpm, ok := e.tpms[tpmID]
	if !ok {
		return 0
	}

	score := e.weights.Timezone * e.tz.Score(tpm.Timezone, prog)
	score += e.weights.Skill * SkillScore(tpm, prog)
	score += e.weights.Level * LevelScore(tpm.Level, prog.RequiredLevel)
	score += e.weights.Portfolio * e.portfolioScore(tpm, prog, current)

	if tpm.DesiredPrograms.Has(prog.ID) || tpm.DesiredPrograms.Has(prog.Name) {
		score += e.weights.Preference * preferenceBonus
	}

	return score
}

// preferenceBonus is the flat component value credited when a program is on
// the TPM's desired list. It is intentionally small relative to the other
// components, which are normalized to [0, 1].
const preferenceBonus = 0.2

// SkillScore returns the fraction of the program's required skills present
// in the TPM's skill set. A program with no required skills is a full
// match for everyone.
func SkillScore(tpm *types.TPM, prog *types.Program) float64 {
	required := prog.RequiredSkills.Len()
	if required == 0 {
		return 1.0
	}

	return float64(tpm.Skills.IntersectCount(prog.RequiredSkills)) / float64(required)
}

// LevelScore rates seniority fit. An exact level match is ideal; slight
// over-leveling is acceptable, and strong over-leveling wastes seniority.
// Under-leveled TPMs score zero (and are rejected as a hard constraint).
func LevelScore(tpmLevel, requiredLevel int) float64 {
	switch {
	case tpmLevel < requiredLevel:
		return 0.0
	case tpmLevel == requiredLevel:
		return 1.0
	case tpmLevel == requiredLevel+1:
		return 0.7
	default:
		return 0.4
	}
}

// portfolioScore rates portfolio continuity: full credit when the TPM
// already operates in the program's portfolio, either declared or through
// another program in the snapshot; half credit otherwise, since taking on a
// new portfolio is a cost but never disqualifying.
func (e *Engine) portfolioScore(tpm *types.TPM, prog *types.Program, current types.Assignments) float64 {
	if prog.Portfolio == "" {
		return 1.0
	}
	if tpm.Portfolios.Has(prog.Portfolio) {
		return 1.0
	}
	if e.carriesPortfolio(tpm.ID, prog, current) {
		return 1.0
	}

	return 0.5
}

// PortfolioCount returns how many distinct portfolios a snapshot assigns
// to the given TPM. Programs without a portfolio do not count.
func (e *Engine) PortfolioCount(tpmID string, current types.Assignments) int {
	seen := make(map[string]struct{})
	for progID, assignee := range current {
		if assignee != tpmID {
			continue
		}
		if prog, ok := e.programs[progID]; ok && prog.Portfolio != "" {
			seen[prog.Portfolio] = struct{}{}
		}
	}

	return len(seen)
}
