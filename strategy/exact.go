package strategy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// ExactParams holds the solver budget of the Exact strategy.
type ExactParams struct {
	// MaxSolveTime caps the CP-SAT search. Zero means no explicit limit.
	MaxSolveTime time.Duration
}

// Exact implements the optimal strategy on top of the CP-SAT solver.
//
// The problem is encoded as one Boolean variable per legal (program, TPM)
// pair, an exactly-one constraint per unpinned program, a capacity
// constraint per TPM that does not tolerate overload, and a
// distinct-portfolio cap per TPM. The objective maximizes the summed
// assignment score. Scores and times are fixed-point scaled since CP-SAT
// works over integers.
type Exact struct {
	eng    *engine.Engine
	params ExactParams
	opts   options
}

var _ types.Strategy = (*Exact)(nil)

// scoreScale converts fractional scores and FTE times to integers for the
// solver. Three decimal digits keep rounding error below any weight delta
// the scoring engine can produce.
const scoreScale = 1000

// NewExact creates an exact CP-SAT strategy.
//
// Parameters:
//   - eng: Constraint engine holding the problem definition
//   - params: Solver budget
//   - opts: Optional configuration (WithLogger, WithMetrics,
//     WithStrictFixedAssignments)
//
// Returns:
//   - *Exact: Initialized strategy
func NewExact(eng *engine.Engine, params ExactParams, opts ...Option) *Exact {
	return &Exact{eng: eng, params: params, opts: newOptions(eng, opts)}
}

// Name returns the strategy identifier.
func (s *Exact) Name() string {
	return "exact"
}

// Optimize builds and solves the CP-SAT model.
//
// Every unpinned program must be placed, so a program with no legal TPM
// makes the model infeasible; whenever the solver finds no solution, the
// fixed pins alone are returned.
func (s *Exact) Optimize(ctx context.Context) (types.Assignments, error) {
	start := time.Now()

	if err := checkFixed(s.eng, s.opts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logDiagnostics()

	fixed := s.eng.FixedAssignments()
	model := cpmodel.NewCpModelBuilder()

	// vars[progID][tpmID] is 1 when the program is assigned to the TPM.
	// Only legal pairs get a variable; pinned programs are constants.
	vars := make(map[string]map[string]cpmodel.BoolVar)
	objective := cpmodel.NewLinearExpr()

	for _, progID := range unpinnedPrograms(s.eng) {
		candidates := make(map[string]cpmodel.BoolVar)
		for _, tpmID := range s.eng.TPMIDs() {
			if !s.legalPair(progID, tpmID) {
				continue
			}
			v := model.NewBoolVar().WithName(fmt.Sprintf("assign_%s_%s", progID, tpmID))
			candidates[tpmID] = v

			score := s.eng.PairScore(progID, tpmID, fixed)
			objective.AddTerm(v, int64(math.Round(score*scoreScale)))
		}

		if len(candidates) == 0 {
			s.opts.logger.Warn("program has no legal TPM, model is infeasible", "program", progID)
		}
		vars[progID] = candidates

		// Every unpinned program must land exactly once. A program with no
		// legal TPM leaves this sum empty, so the model is infeasible and
		// the solve falls back to the pins-only result.
		exactlyOne := cpmodel.NewLinearExpr()
		for _, tpmID := range s.eng.TPMIDs() {
			if v, ok := candidates[tpmID]; ok {
				exactlyOne.Add(v)
			}
		}
		model.AddEquality(exactlyOne, cpmodel.NewConstant(1))
	}

	s.addCapacityConstraints(model, vars, fixed)
	s.addPortfolioConstraints(model, vars, fixed)
	model.Maximize(objective)

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrModelBuild, err)
	}

	response, err := s.solve(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSolverFailed, err)
	}

	status := response.GetStatus()
	s.opts.logger.Info("cp-sat solve finished",
		"status", status.String(),
		"objective", response.GetObjectiveValue(),
		"wallTime", response.GetWallTime(),
	)

	asn := fixed
	if status == cmpb.CpSolverStatus_OPTIMAL || status == cmpb.CpSolverStatus_FEASIBLE {
		for progID, candidates := range vars {
			for tpmID, v := range candidates {
				if cpmodel.SolutionBooleanValue(response, v) {
					asn[progID] = tpmID
				}
			}
		}
	} else {
		s.opts.logger.Warn("cp-sat found no solution, returning fixed assignments only",
			"status", status.String())
	}

	s.opts.metrics.RecordSolveDuration(s.Name(), time.Since(start).Seconds())
	s.opts.metrics.RecordIterations(s.Name(), 1)
	reportSolution(s.eng, s.opts, asn)

	return asn, nil
}

// logDiagnostics surfaces the supply and demand picture before the solve,
// so an infeasible or understaffed dataset is explained rather than just
// producing a sparse solution.
func (s *Exact) logDiagnostics() {
	capacity := s.eng.Capacity()
	if !capacity.Feasible() {
		s.opts.logger.Warn("aggregate demand exceeds supply",
			"supply", capacity.TotalSupply,
			"demand", capacity.TotalDemand,
			"overloadTolerant", len(capacity.OverloadTolerant),
		)
	}

	// A program requiring level N is served by any TPM at level >= N, so
	// gaps show up in the cumulative time sums from the top tier down.
	tiers := s.eng.LevelTiers()
	supply, demand := 0.0, 0.0
	for i := len(tiers) - 1; i >= 0; i-- {
		supply += tiers[i].Supply
		demand += tiers[i].Demand
		if demand > supply+1e-9 {
			s.opts.logger.Warn("possible staffing gap at seniority level",
				"level", tiers[i].Level, "requiredTime", demand, "availableTime", supply)
		}
	}
}

// legalPair checks the snapshot-independent hard constraints: existence,
// conflicts, and level. Capacity is a model constraint, not a pair filter.
func (s *Exact) legalPair(progID, tpmID string) bool {
	prog, tpm := s.eng.Program(progID), s.eng.TPM(tpmID)
	if prog == nil || tpm == nil {
		return false
	}
	if tpm.Conflicts.Has(prog.ID) || tpm.Conflicts.Has(prog.Name) {
		return false
	}

	return tpm.Level >= prog.RequiredLevel
}

// addCapacityConstraints bounds each non-tolerant TPM's assigned time by
// its remaining capacity after fixed pins.
func (s *Exact) addCapacityConstraints(model *cpmodel.Builder, vars map[string]map[string]cpmodel.BoolVar, fixed types.Assignments) {
	for _, tpmID := range s.eng.TPMIDs() {
		tpm := s.eng.TPM(tpmID)
		if tpm.AllowOverload {
			continue
		}

		remaining := tpm.AvailableTime - s.eng.Load(tpmID, fixed)
		if remaining < 0 {
			// Pins already overflow this TPM; they are honored regardless,
			// but no further work lands on it.
			remaining = 0
		}

		load := cpmodel.NewLinearExpr()
		terms := 0
		for progID, candidates := range vars {
			if v, ok := candidates[tpmID]; ok {
				load.AddTerm(v, int64(math.Round(s.eng.Program(progID).RequiredTime*scoreScale)))
				terms++
			}
		}
		if terms == 0 {
			continue
		}
		model.AddLessOrEqual(load, cpmodel.NewConstant(int64(math.Round(remaining*scoreScale))))
	}
}

// addPortfolioConstraints caps the distinct portfolios per TPM. Each
// (TPM, portfolio) group gets a carrier Boolean implied by its assignment
// variables; the carriers per TPM sum to at most the cap, minus whatever
// distinct tags the pins already place there.
func (s *Exact) addPortfolioConstraints(model *cpmodel.Builder, vars map[string]map[string]cpmodel.BoolVar, fixed types.Assignments) {
	for _, tpmID := range s.eng.TPMIDs() {
		pinnedTags := make(map[string]bool)
		for progID, assignee := range fixed {
			if assignee != tpmID {
				continue
			}
			if prog := s.eng.Program(progID); prog != nil && prog.Portfolio != "" {
				pinnedTags[prog.Portfolio] = true
			}
		}

		// Tags the pins already carry are free: one more program of the
		// same portfolio adds no diversity.
		groups := make(map[string][]cpmodel.BoolVar)
		for progID, candidates := range vars {
			v, ok := candidates[tpmID]
			if !ok {
				continue
			}
			prog := s.eng.Program(progID)
			if prog.Portfolio == "" || pinnedTags[prog.Portfolio] {
				continue
			}
			groups[prog.Portfolio] = append(groups[prog.Portfolio], v)
		}
		if len(groups) == 0 {
			continue
		}

		budget := types.MaxPortfolios - len(pinnedTags)
		if budget < 0 {
			// Pins past the cap are honored as-is; no new tags may land.
			budget = 0
		}

		tags := make([]string, 0, len(groups))
		for tag := range groups {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		total := cpmodel.NewLinearExpr()
		for _, tag := range tags {
			carrier := model.NewBoolVar().WithName(fmt.Sprintf("carries_%s_%s", tpmID, tag))
			for _, v := range groups[tag] {
				model.AddLessOrEqual(v, carrier)
			}
			total.Add(carrier)
		}
		model.AddLessOrEqual(total, cpmodel.NewConstant(int64(budget)))
	}
}

// solve runs the model with the configured time budget.
func (s *Exact) solve(m *cmpb.CpModelProto) (*cmpb.CpSolverResponse, error) {
	if s.params.MaxSolveTime <= 0 {
		return cpmodel.SolveCpModel(m)
	}

	return cpmodel.SolveCpModelWithParameters(m, &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(s.params.MaxSolveTime.Seconds()),
	})
}
