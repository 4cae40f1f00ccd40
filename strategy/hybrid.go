package strategy

import (
	"context"
	"math"
	"time"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/objective"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// HybridParams holds the refinement schedule of the Hybrid strategy.
type HybridParams struct {
	InitialTemperature float64
	CoolingRate        float64
	MinTemperature     float64
	MaxIterations      int
	MaxRuntime         time.Duration
	NoImprovementLimit int
	MaxNeighborRetries int
}

// Hybrid implements greedy construction followed by Pareto-guided
// refinement.
//
// Construction places programs hardest-first, choosing for each the legal
// TPM whose resulting solution dominates the alternatives. Refinement then
// walks feasible neighbors, comparing candidate and incumbent as metric
// vectors: dominating candidates are always taken, dominated ones never,
// and incomparable trade-offs are accepted with a temperature-scaled
// probability. The strategy only ever returns feasible solutions.
type Hybrid struct {
	eng    *engine.Engine
	params HybridParams
	opts   options
}

var _ types.Strategy = (*Hybrid)(nil)

// NewHybrid creates a Pareto-guided hybrid strategy.
//
// Parameters:
//   - eng: Constraint engine holding the problem definition
//   - params: Refinement schedule and budgets
//   - opts: Optional configuration (WithSeed, WithLogger, WithMetrics, ...)
//
// Returns:
//   - *Hybrid: Initialized strategy
func NewHybrid(eng *engine.Engine, params HybridParams, opts ...Option) *Hybrid {
	return &Hybrid{eng: eng, params: params, opts: newOptions(eng, opts)}
}

// Name returns the strategy identifier.
func (s *Hybrid) Name() string {
	return "hybrid"
}

// Optimize runs construction and refinement and returns the best feasible
// snapshot found.
func (s *Hybrid) Optimize(ctx context.Context) (types.Assignments, error) {
	start := time.Now()

	if err := checkFixed(s.eng, s.opts); err != nil {
		return nil, err
	}

	current := objective.Evaluate(s.eng, s.construct())
	best := current

	movable := unpinnedPrograms(s.eng)
	tpmIDs := s.eng.TPMIDs()
	if len(movable) == 0 || len(tpmIDs) < 2 {
		s.finish(start, 0, best.Assignments)

		return best.Assignments, nil
	}

	deadline := time.Time{}
	if s.params.MaxRuntime > 0 {
		deadline = start.Add(s.params.MaxRuntime)
	}

	temperature := s.params.InitialTemperature
	sinceImprovement := 0
	iterations := 0

	for ; iterations < s.params.MaxIterations && temperature > s.params.MinTemperature; iterations++ {
		if iterations%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				s.opts.logger.Info("hybrid runtime budget exhausted", "iterations", iterations)

				break
			}
		}
		if sinceImprovement >= s.params.NoImprovementLimit {
			s.opts.logger.Info("hybrid converged", "iterations", iterations)

			break
		}

		candidate, ok := s.feasibleNeighbor(current.Assignments, movable, tpmIDs)
		if !ok {
			temperature *= s.params.CoolingRate
			sinceImprovement++

			continue
		}

		accepted := s.accept(candidate, current, temperature)
		s.opts.metrics.RecordMoveOutcome(s.Name(), accepted)
		if accepted {
			current = candidate
		}

		if candidate.Dominates(best) {
			best = candidate
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		temperature *= s.params.CoolingRate
	}

	s.opts.logger.Info("hybrid optimization complete",
		"iterations", iterations,
		"assigned", len(best.Assignments),
		"programs", len(s.eng.ProgramIDs()),
		"unusedTPMs", best.Metrics.UnusedTPMs,
		"timezoneViolations", best.Metrics.TimezoneViolations,
	)
	s.finish(start, iterations, best.Assignments)

	return best.Assignments, nil
}

// construct builds the initial snapshot: pins first, then programs in
// hardest-first order, each placed on the legal TPM whose resulting
// solution dominates the alternatives. The first TPM evaluated wins ties,
// so construction is deterministic.
func (s *Hybrid) construct() types.Assignments {
	asn := s.eng.FixedAssignments()

	for _, progID := range constructionOrder(s.eng) {
		if s.eng.FixedFor(progID) != "" {
			continue
		}

		bestTPM := ""
		var bestSol objective.Solution
		for _, tpmID := range s.eng.TPMIDs() {
			if !s.eng.ValidateAssignment(progID, tpmID, asn) {
				continue
			}
			asn[progID] = tpmID
			candidate := objective.Evaluate(s.eng, asn)
			delete(asn, progID)

			if bestTPM == "" || candidate.Dominates(bestSol) {
				bestTPM = tpmID
				bestSol = candidate
			}
		}
		if bestTPM != "" {
			asn[progID] = bestTPM
		}
	}

	return asn
}

func (s *Hybrid) finish(start time.Time, iterations int, asn types.Assignments) {
	s.opts.metrics.RecordSolveDuration(s.Name(), time.Since(start).Seconds())
	s.opts.metrics.RecordIterations(s.Name(), iterations)
	reportSolution(s.eng, s.opts, asn)
}

// accept decides whether to move to a candidate solution. Dominating
// candidates are always accepted and dominated ones never; incomparable
// trade-offs are accepted with probability exp(delta/temperature) where
// delta is the net objective improvement count.
func (s *Hybrid) accept(candidate, current objective.Solution, temperature float64) bool {
	if candidate.Dominates(current) {
		return true
	}
	if current.Dominates(candidate) {
		return false
	}

	delta := float64(candidate.ImprovementCount(current) - current.ImprovementCount(candidate))

	return s.opts.rng.Float64() < math.Exp(delta/temperature)
}

// feasibleNeighbor draws random neighbors until one passes the hard
// constraints, bounded by MaxNeighborRetries. Half the draws swap the TPMs
// of two movable programs, the other half reassign one movable program,
// mirroring the annealing move set.
func (s *Hybrid) feasibleNeighbor(current types.Assignments, movable, tpmIDs []string) (objective.Solution, bool) {
	for range s.params.MaxNeighborRetries {
		if len(movable) >= 2 && s.opts.rng.Float64() < 0.5 {
			if candidate, ok := s.swapNeighbor(current, movable); ok {
				return candidate, true
			}

			continue
		}

		progID := movable[s.opts.rng.IntN(len(movable))]
		tpmID := tpmIDs[s.opts.rng.IntN(len(tpmIDs))]
		if current[progID] == tpmID {
			continue
		}

		next := current.Clone()
		delete(next, progID)
		if !s.eng.ValidateAssignment(progID, tpmID, next) {
			continue
		}
		next[progID] = tpmID

		candidate := objective.Evaluate(s.eng, next)
		if candidate.IsFeasible() {
			return candidate, true
		}
	}

	return objective.Solution{}, false
}

// swapNeighbor exchanges the TPMs of two random movable programs, checking
// each leg against the hard constraints with the other program already
// removed so paired moves that only work together still validate.
func (s *Hybrid) swapNeighbor(current types.Assignments, movable []string) (objective.Solution, bool) {
	i := s.opts.rng.IntN(len(movable))
	j := s.opts.rng.IntN(len(movable) - 1)
	if j >= i {
		j++
	}
	a, b := movable[i], movable[j]

	ta, aOK := current[a]
	tb, bOK := current[b]
	if !aOK || !bOK || ta == tb {
		return objective.Solution{}, false
	}

	next := current.Clone()
	delete(next, a)
	delete(next, b)
	if !s.eng.ValidateAssignment(a, tb, next) {
		return objective.Solution{}, false
	}
	next[a] = tb
	if !s.eng.ValidateAssignment(b, ta, next) {
		return objective.Solution{}, false
	}
	next[b] = ta

	candidate := objective.Evaluate(s.eng, next)
	if !candidate.IsFeasible() {
		return objective.Solution{}, false
	}

	return candidate, true
}
