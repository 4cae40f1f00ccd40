package strategy

import (
	"context"
	"math"
	"time"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// PlacementBonus adjusts the greedy phase's placement score for one
// candidate pairing. The returned value is added to the built-in bonuses,
// so organizations can fold local policy (team history, on-call calendars)
// into the greedy phase without forking the strategy.
type PlacementBonus func(prog *types.Program, tpm *types.TPM) float64

// TwoPhase implements deterministic greedy placement followed by an
// overload rebalancing pass.
//
// Phase one places programs hardest-first onto the TPM with the best
// utilization tier, timezone proximity, and portfolio affinity. The greedy
// phase caps load at the absolute full-time equivalent rather than each
// TPM's available time, so a constrained roster can be packed first and
// smoothed after. Phase two then repeatedly moves the smallest movable
// program off the most overloaded TPM until no overload remains or no
// legal move exists; whatever still exceeds available time after that is
// unassigned rather than returned in violation.
type TwoPhase struct {
	eng   *engine.Engine
	opts  options
	bonus PlacementBonus
}

var _ types.Strategy = (*TwoPhase)(nil)

// NewTwoPhase creates a two-phase greedy strategy.
//
// Parameters:
//   - eng: Constraint engine holding the problem definition
//   - opts: Optional configuration (WithLogger, WithMetrics,
//     WithStrictFixedAssignments)
//
// Returns:
//   - *TwoPhase: Initialized strategy
func NewTwoPhase(eng *engine.Engine, opts ...Option) *TwoPhase {
	return &TwoPhase{eng: eng, opts: newOptions(eng, opts)}
}

// NewTwoPhaseWithBonus creates a two-phase strategy with a custom placement
// bonus folded into the greedy phase.
func NewTwoPhaseWithBonus(eng *engine.Engine, bonus PlacementBonus, opts ...Option) *TwoPhase {
	s := NewTwoPhase(eng, opts...)
	s.bonus = bonus

	return s
}

// Name returns the strategy identifier.
func (s *TwoPhase) Name() string {
	return "two-phase"
}

// Utilization tier bonuses of the greedy phase. The sweet spot is 80-90%
// of a TPM's available time; a lightly loaded TPM is preferred over an
// almost-full one.
const (
	tierIdealBonus      = 100.0 // utilization in [0.80, 0.90]
	tierAcceptableBonus = 80.0  // utilization in [0.70, 0.80)
	tierFullBonus       = 60.0  // utilization in (0.90, 1.00]

	tzNearBonus = 50.0 // within 3 hours
	tzOKBonus   = 20.0 // within 6 hours

	portfolioAffinityBonus = 30.0
)

// Optimize runs both phases and returns the resulting assignments.
//
// The run is deterministic for a given dataset: programs are placed
// hardest-first and ties break on lexicographic TPM order.
func (s *TwoPhase) Optimize(ctx context.Context) (types.Assignments, error) {
	start := time.Now()

	if err := checkFixed(s.eng, s.opts); err != nil {
		return nil, err
	}

	asn := s.eng.FixedAssignments()

	placed := 0
	for _, progID := range constructionOrder(s.eng) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tpmID, ok := s.place(progID, asn); ok {
			asn[progID] = tpmID
			placed++
		} else {
			s.opts.logger.Debug("no legal placement found", "program", progID)
		}
	}

	moves := s.rebalance(asn)
	dropped := s.dropResidualOverload(asn)

	s.opts.logger.Info("two-phase optimization complete",
		"placed", placed,
		"rebalanceMoves", moves,
		"dropped", dropped,
		"assigned", len(asn),
		"programs", len(s.eng.ProgramIDs()),
	)
	s.opts.metrics.RecordSolveDuration(s.Name(), time.Since(start).Seconds())
	s.opts.metrics.RecordIterations(s.Name(), placed+moves)
	reportSolution(s.eng, s.opts, asn)

	return asn, nil
}

// place picks the best TPM for one program under the bonus scoring, using
// the relaxed greedy-phase capacity check.
func (s *TwoPhase) place(progID string, asn types.Assignments) (string, bool) {
	prog := s.eng.Program(progID)

	bestTPM := ""
	bestScore := math.Inf(-1)
	for _, tpmID := range s.eng.TPMIDs() {
		if !s.greedyValid(progID, tpmID, asn) {
			continue
		}
		if score := s.placementScore(prog, s.eng.TPM(tpmID), asn); score > bestScore {
			bestTPM = tpmID
			bestScore = score
		}
	}

	return bestTPM, bestTPM != ""
}

// greedyValid is the phase-one legality check: pins, conflicts, and level
// are enforced as usual, but capacity is bounded by the absolute full-time
// equivalent instead of the TPM's available time. The slack is what phase
// two rebalances away.
func (s *TwoPhase) greedyValid(progID, tpmID string, asn types.Assignments) bool {
	prog, tpm := s.eng.Program(progID), s.eng.TPM(tpmID)
	if prog == nil || tpm == nil {
		return false
	}
	if pinned := s.eng.FixedFor(progID); pinned != "" && pinned != tpmID {
		return false
	}
	if tpm.Conflicts.Has(prog.ID) || tpm.Conflicts.Has(prog.Name) {
		return false
	}
	if tpm.Level < prog.RequiredLevel {
		return false
	}
	if prog.Portfolio != "" && !s.carriedByAssignment(prog, tpmID, asn) &&
		s.eng.PortfolioCount(tpmID, asn) >= types.MaxPortfolios {
		// The portfolio cap is not smoothed away by phase two, so it is
		// enforced strictly even in the relaxed phase.
		return false
	}
	if tpm.AllowOverload {
		return true
	}

	load := s.eng.Load(tpmID, asn)
	if cur, ok := asn[progID]; ok && cur == tpmID {
		load -= prog.RequiredTime
	}

	return load+prog.RequiredTime <= types.MaxCapacity
}

// carriedByAssignment reports whether another program in the snapshot
// already puts the program's portfolio on the TPM. The TPM's declared
// portfolios do not count toward the cap.
func (s *TwoPhase) carriedByAssignment(prog *types.Program, tpmID string, asn types.Assignments) bool {
	for otherID, assignee := range asn {
		if assignee != tpmID || otherID == prog.ID {
			continue
		}
		if other := s.eng.Program(otherID); other != nil && other.Portfolio == prog.Portfolio {
			return true
		}
	}

	return false
}

// placementScore rates a legal candidate pairing for the greedy phase.
func (s *TwoPhase) placementScore(prog *types.Program, tpm *types.TPM, asn types.Assignments) float64 {
	score := 0.0

	if tpm.AvailableTime > 0 {
		utilization := (s.eng.Load(tpm.ID, asn) + prog.RequiredTime) / tpm.AvailableTime
		switch {
		case utilization >= 0.80 && utilization <= 0.90:
			score += tierIdealBonus
		case utilization >= 0.70 && utilization < 0.80:
			score += tierAcceptableBonus
		case utilization > 0.90 && utilization <= types.MaxCapacity:
			score += tierFullBonus
		}
	}

	switch diff := s.eng.TimezoneScorer().DifferenceHours(tpm.Timezone, prog.Timezone); {
	case diff <= types.PreferredTimezoneSpread:
		score += tzNearBonus
	case diff <= types.MaxTimezoneSpread:
		score += tzOKBonus
	}

	if prog.Portfolio != "" && s.hasPortfolioAffinity(prog, tpm, asn) {
		score += portfolioAffinityBonus
	}

	if s.bonus != nil {
		score += s.bonus(prog, tpm)
	}

	return score
}

func (s *TwoPhase) hasPortfolioAffinity(prog *types.Program, tpm *types.TPM, asn types.Assignments) bool {
	if tpm.Portfolios.Has(prog.Portfolio) {
		return true
	}
	for otherID, assignee := range asn {
		if assignee != tpm.ID || otherID == prog.ID {
			continue
		}
		if other := s.eng.Program(otherID); other != nil && other.Portfolio == prog.Portfolio {
			return true
		}
	}

	return false
}

// rebalance moves the smallest movable program off the most overloaded TPM
// until no overload remains or no overloaded TPM has a legal move left. A
// TPM whose excess cannot move (only pins remain, or no target takes its
// work) is set aside and the next-most-overloaded one is processed; other
// TPMs only ever gain load during this phase, so a stuck TPM stays stuck.
// Returns the number of moves applied.
func (s *TwoPhase) rebalance(asn types.Assignments) int {
	moves := 0
	stuck := make(map[string]bool)
	// Each iteration either applies a move, strictly reducing total
	// overload, or retires a TPM, so programs+TPMs bounds the loop.
	for limit := len(s.eng.ProgramIDs()) + len(s.eng.TPMIDs()); limit > 0; limit-- {
		tpmID, overload := s.mostOverloaded(asn, stuck)
		if tpmID == "" {
			break
		}

		progID, ok := s.smallestMovable(tpmID, asn)
		if !ok {
			s.opts.logger.Warn("overloaded TPM has no movable program",
				"tpm", tpmID, "overload", overload)
			stuck[tpmID] = true

			continue
		}

		target, ok := s.bestTarget(progID, tpmID, asn)
		if !ok {
			s.opts.logger.Warn("no relocation target for program",
				"program", progID, "from", tpmID)
			stuck[tpmID] = true

			continue
		}

		s.opts.logger.Debug("rebalancing program",
			"program", progID, "from", tpmID, "to", target)
		asn[progID] = target
		moves++
	}

	return moves
}

// mostOverloaded returns the TPM with the largest capacity excess,
// ignoring the ones in skip. Overload-tolerant TPMs are never rebalanced
// away from.
func (s *TwoPhase) mostOverloaded(asn types.Assignments, skip map[string]bool) (string, float64) {
	worst := ""
	worstOverload := 0.0
	for _, tpmID := range s.eng.TPMIDs() {
		tpm := s.eng.TPM(tpmID)
		if tpm.AllowOverload || skip[tpmID] {
			continue
		}
		if overload := s.eng.Load(tpmID, asn) - tpm.AvailableTime; overload > worstOverload {
			worst = tpmID
			worstOverload = overload
		}
	}

	return worst, worstOverload
}

// smallestMovable returns the unpinned program with the smallest required
// time among those the snapshot assigns to tpmID.
func (s *TwoPhase) smallestMovable(tpmID string, asn types.Assignments) (string, bool) {
	best := ""
	bestTime := math.Inf(1)
	for _, progID := range asn.ProgramsFor(tpmID) {
		if s.eng.FixedFor(progID) != "" {
			continue
		}
		if prog := s.eng.Program(progID); prog != nil && prog.RequiredTime < bestTime {
			best = progID
			bestTime = prog.RequiredTime
		}
	}

	return best, best != ""
}

// dropResidualOverload unassigns movable programs still violating the
// strict capacity constraint after rebalancing, smallest first per TPM, so
// the returned snapshot never exceeds available time on a non-tolerant
// TPM. Returns the number of programs dropped.
func (s *TwoPhase) dropResidualOverload(asn types.Assignments) int {
	dropped := 0
	for _, tpmID := range s.eng.TPMIDs() {
		tpm := s.eng.TPM(tpmID)
		if tpm.AllowOverload {
			continue
		}
		for s.eng.Load(tpmID, asn) > tpm.AvailableTime {
			progID, ok := s.smallestMovable(tpmID, asn)
			if !ok {
				break // only pins remain; they are honored as-is
			}
			s.opts.logger.Warn("unassigning program, no capacity remains",
				"program", progID, "tpm", tpmID)
			delete(asn, progID)
			dropped++
		}
	}

	return dropped
}

// bestTarget picks the legal destination with the highest placement score,
// excluding the source TPM.
func (s *TwoPhase) bestTarget(progID, fromTPM string, asn types.Assignments) (string, bool) {
	prog := s.eng.Program(progID)

	// Score candidates with the program removed from its current slot.
	trial := asn.Clone()
	delete(trial, progID)

	best := ""
	bestScore := math.Inf(-1)
	for _, tpmID := range s.eng.TPMIDs() {
		if tpmID == fromTPM || !s.eng.ValidateAssignment(progID, tpmID, trial) {
			continue
		}
		if score := s.placementScore(prog, s.eng.TPM(tpmID), trial); score > bestScore {
			best = tpmID
			bestScore = score
		}
	}

	return best, best != ""
}
