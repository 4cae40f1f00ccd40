package strategy

import (
	"context"
	"math"
	"time"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// AnnealingParams holds the cooling schedule of the Annealing strategy.
type AnnealingParams struct {
	InitialTemperature float64
	CoolingRate        float64
	MinTemperature     float64
	MaxIterations      int
}

// Annealing implements simulated annealing over a penalty-based energy
// function.
//
// The walk stays inside the legal region: a neighbor that breaks a hard
// constraint scores negative-infinity energy and is never accepted. The
// penalties cover the soft concerns legality does not: underutilization of
// working TPMs, overload carried in by fixed pins, and idle capacity
// sitting next to overload. The returned snapshot is the best state encountered,
// not necessarily the terminal one.
type Annealing struct {
	eng    *engine.Engine
	params AnnealingParams
	opts   options
}

var _ types.Strategy = (*Annealing)(nil)

// NewAnnealing creates a simulated annealing strategy.
//
// Parameters:
//   - eng: Constraint engine holding the problem definition
//   - params: Cooling schedule and iteration budget
//   - opts: Optional configuration (WithSeed, WithLogger, WithMetrics, ...)
//
// Returns:
//   - *Annealing: Initialized strategy
func NewAnnealing(eng *engine.Engine, params AnnealingParams, opts ...Option) *Annealing {
	return &Annealing{eng: eng, params: params, opts: newOptions(eng, opts)}
}

// Name returns the strategy identifier.
func (s *Annealing) Name() string {
	return "annealing"
}

// Penalty coefficients of the energy function.
const (
	portfolioPenalty       = 2.0  // per assignment on a TPM over the portfolio cap
	timezonePenalty        = 1.5  // per assignment beyond the max spread
	overloadPenalty        = 10.0 // per unit of excess load, intolerant TPMs only
	underutilPenalty       = 5.0  // per unit below the utilization floor
	severeUnderutilPenalty = 10.0 // additional, per unit below half utilization
	imbalancePenalty       = 5.0  // unused x overloaded cross term
)

// Optimize runs the annealing search and returns the best snapshot found.
func (s *Annealing) Optimize(ctx context.Context) (types.Assignments, error) {
	start := time.Now()

	if err := checkFixed(s.eng, s.opts); err != nil {
		return nil, err
	}

	current := s.construct()
	currentEnergy := s.energy(current)

	best := current.Clone()
	bestEnergy := currentEnergy

	movable := unpinnedPrograms(s.eng)
	tpmIDs := s.eng.TPMIDs()
	if len(movable) == 0 || len(tpmIDs) < 2 {
		// Nothing to search; the construction is the answer.
		s.finish(start, 0, best)

		return best, nil
	}

	temperature := s.params.InitialTemperature
	iterations := 0
	for ; iterations < s.params.MaxIterations && temperature > s.params.MinTemperature; iterations++ {
		if iterations%128 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		candidate := s.neighbor(current, movable, tpmIDs)
		candidateEnergy := s.energy(candidate)

		accepted := s.accept(candidateEnergy-currentEnergy, temperature)
		s.opts.metrics.RecordMoveOutcome(s.Name(), accepted)
		if accepted {
			current = candidate
			currentEnergy = candidateEnergy
			if currentEnergy > bestEnergy {
				best = current.Clone()
				bestEnergy = currentEnergy
			}
		}

		temperature *= s.params.CoolingRate
	}

	// Neighbor generation never moves pinned programs, so a missing or
	// relocated pin here is an internal consistency failure, not an input
	// problem.
	if !s.eng.ValidateFixedAssignments(best) {
		return nil, types.ErrFixedAssignmentViolated
	}

	s.opts.logger.Info("annealing complete",
		"iterations", iterations,
		"finalTemperature", temperature,
		"bestEnergy", bestEnergy,
		"assigned", len(best),
		"programs", len(s.eng.ProgramIDs()),
	)
	s.finish(start, iterations, best)

	return best, nil
}

func (s *Annealing) finish(start time.Time, iterations int, asn types.Assignments) {
	s.opts.metrics.RecordSolveDuration(s.Name(), time.Since(start).Seconds())
	s.opts.metrics.RecordIterations(s.Name(), iterations)
	reportSolution(s.eng, s.opts, asn)
}

// construct seeds the walk: pins first, then a uniformly random legal TPM
// for each remaining program in sorted order. Programs with no legal TPM
// stay unassigned.
func (s *Annealing) construct() types.Assignments {
	asn := s.eng.FixedAssignments()

	for _, progID := range s.eng.ProgramIDs() {
		if s.eng.FixedFor(progID) != "" {
			continue
		}
		if candidates := s.legalTPMs(progID, asn); len(candidates) > 0 {
			asn[progID] = candidates[s.opts.rng.IntN(len(candidates))]
		}
	}

	return asn
}

// legalTPMs returns the TPMs the program may legally join, in sorted order
// so random draws are reproducible under a fixed seed.
func (s *Annealing) legalTPMs(progID string, asn types.Assignments) []string {
	var candidates []string
	for _, tpmID := range s.eng.TPMIDs() {
		if s.eng.ValidateAssignment(progID, tpmID, asn) {
			candidates = append(candidates, tpmID)
		}
	}

	return candidates
}

// accept implements the Metropolis criterion for an energy delta, where
// higher energy is better.
func (s *Annealing) accept(delta, temperature float64) bool {
	if delta > 0 {
		return true
	}

	return s.opts.rng.Float64() < math.Exp(delta/temperature)
}

// neighbor produces a random adjacent snapshot: half the time two movable
// programs swap TPMs, otherwise one movable program moves to a random
// legal TPM. Fixed programs never move. Swaps may produce an illegal
// snapshot; the energy function rejects those through its validity
// short-circuit.
func (s *Annealing) neighbor(current types.Assignments, movable, tpmIDs []string) types.Assignments {
	next := current.Clone()

	if len(movable) >= 2 && s.opts.rng.Float64() < 0.5 {
		i := s.opts.rng.IntN(len(movable))
		j := s.opts.rng.IntN(len(movable) - 1)
		if j >= i {
			j++
		}
		a, b := movable[i], movable[j]
		// Swapping an unassigned slot with an assigned one moves the
		// assignment over; both unassigned is a no-op.
		ta, aOK := next[a]
		tb, bOK := next[b]
		delete(next, a)
		delete(next, b)
		if bOK {
			next[a] = tb
		}
		if aOK {
			next[b] = ta
		}

		return next
	}

	progID := movable[s.opts.rng.IntN(len(movable))]
	delete(next, progID)
	if candidates := s.legalTPMs(progID, next); len(candidates) > 0 {
		next[progID] = candidates[s.opts.rng.IntN(len(candidates))]
	} else if tpmID, ok := current[progID]; ok {
		next[progID] = tpmID
	}

	return next
}

// energy scores a snapshot: summed pair scores minus violation penalties,
// higher is better. A snapshot whose non-pinned assignments include an
// illegal pairing scores negative infinity; pinned pairs are exempt, since
// pins are honored even when they violate constraints.
func (s *Annealing) energy(asn types.Assignments) float64 {
	energy := 0.0
	tz := s.eng.TimezoneScorer()

	for progID, tpmID := range asn {
		prog, tpm := s.eng.Program(progID), s.eng.TPM(tpmID)
		if prog == nil || tpm == nil {
			continue
		}

		if s.eng.FixedFor(progID) != tpmID && !s.eng.ValidateAssignment(progID, tpmID, asn) {
			return math.Inf(-1)
		}

		energy += s.eng.PairScore(progID, tpmID, asn)

		if s.eng.PortfolioCount(tpmID, asn) > types.MaxPortfolios {
			energy -= portfolioPenalty
		}
		if tz.DifferenceHours(tpm.Timezone, prog.Timezone) > types.MaxTimezoneSpread {
			energy -= timezonePenalty
		}
	}

	unused, overloaded := 0, 0
	for _, tpmID := range s.eng.TPMIDs() {
		tpm := s.eng.TPM(tpmID)
		load := s.eng.Load(tpmID, asn)

		// Idle TPMs cost nothing on their own; they only hurt through the
		// imbalance cross term when other TPMs are overloaded.
		if load == 0 {
			unused++

			continue
		}
		if !tpm.AllowOverload && load > tpm.AvailableTime {
			overloaded++
			energy -= (load - tpm.AvailableTime) * overloadPenalty
		}

		if tpm.AvailableTime > 0 {
			utilization := load / tpm.AvailableTime
			if utilization < types.MinUtilization {
				energy -= (types.MinUtilization - utilization) * underutilPenalty
			}
			if utilization < 0.5 {
				energy -= (0.5 - utilization) * severeUnderutilPenalty
			}
		}
	}

	// Idle capacity next to overload is worse than either alone.
	energy -= float64(unused*overloaded) * imbalancePenalty

	return energy
}
