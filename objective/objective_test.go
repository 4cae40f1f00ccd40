package objective

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motiteux/tpm-assignment-optimizer/engine"
	"github.com/motiteux/tpm-assignment-optimizer/timezone"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

var january = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

var testWeights = types.Weights{Timezone: 0.3, Skill: 0.25, Level: 0.2, Portfolio: 0.15, Preference: 0.1}

func newTestEngine(t *testing.T, tpms []*types.TPM, programs []*types.Program) *engine.Engine {
	t.Helper()

	eng, err := engine.New(tpms, programs, testWeights, timezone.NewFixedInstantScorer(january))
	require.NoError(t, err)

	return eng
}

func testTPM(id, tz string, available float64) *types.TPM {
	return &types.TPM{
		ID: id, Name: id, Timezone: tz,
		Skills: types.NewSet("ml"), AvailableTime: available, Level: 3,
	}
}

func testProgram(id, tz, portfolio string, required float64) *types.Program {
	return &types.Program{
		ID: id, Name: id, Timezone: tz, Portfolio: portfolio,
		RequiredTime: required, RequiredLevel: 3, ComplexityScore: 2,
	}
}

func solutionWith(m Metrics) Solution {
	return Solution{Metrics: m, fixedOK: true}
}

func TestKind_Class(t *testing.T) {
	require.Equal(t, Hard, KindCapacity.Class())
	require.Equal(t, Soft, KindUtilization.Class())
	require.Equal(t, Soft, KindTimezone.Class())
	require.Equal(t, Soft, KindPortfolio.Class())
}

func TestSolution_Dominates(t *testing.T) {
	base := solutionWith(Metrics{UnusedTPMs: 1, TimezoneViolations: 2})

	t.Run("strictly better on one metric dominates", func(t *testing.T) {
		better := solutionWith(Metrics{UnusedTPMs: 1, TimezoneViolations: 1})
		require.True(t, better.Dominates(base))
		require.False(t, base.Dominates(better))
	})

	t.Run("equal vectors do not dominate", func(t *testing.T) {
		require.False(t, base.Dominates(base))
	})

	t.Run("trade-offs are incomparable", func(t *testing.T) {
		other := solutionWith(Metrics{UnusedTPMs: 0, TimezoneViolations: 3})
		require.False(t, base.Dominates(other))
		require.False(t, other.Dominates(base))
	})

	t.Run("transitive", func(t *testing.T) {
		a := solutionWith(Metrics{OverloadedTPMs: 0, PortfolioViolations: 1})
		b := solutionWith(Metrics{OverloadedTPMs: 1, PortfolioViolations: 2})
		c := solutionWith(Metrics{OverloadedTPMs: 2, PortfolioViolations: 3})
		require.True(t, a.Dominates(b))
		require.True(t, b.Dominates(c))
		require.True(t, a.Dominates(c))
	})
}

func TestSolution_ImprovementCount(t *testing.T) {
	a := solutionWith(Metrics{UnusedTPMs: 0, TimezoneViolations: 1, PortfolioViolations: 2})
	b := solutionWith(Metrics{UnusedTPMs: 1, TimezoneViolations: 1, PortfolioViolations: 0})

	require.Equal(t, 1, a.ImprovementCount(b))
	require.Equal(t, 1, b.ImprovementCount(a))
	require.Equal(t, 1, a.WorsenedCount(b))
}

func TestSolution_IsFeasible(t *testing.T) {
	require.True(t, solutionWith(Metrics{TimezoneViolations: 3}).IsFeasible())
	require.False(t, solutionWith(Metrics{OverloadedTPMs: 1}).IsFeasible())

	broken := Solution{Metrics: Metrics{}, fixedOK: false}
	require.False(t, broken.IsFeasible(), "a dropped pin is infeasible even with clean metrics")
}

func TestEvaluate(t *testing.T) {
	t.Run("clean snapshot has no violations", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 1.0)},
			[]*types.Program{testProgram("p1", "Europe/London", "a", 0.5)},
		)

		s := Evaluate(eng, types.Assignments{"p1": "t1"})
		require.Equal(t, Metrics{}, s.Metrics)
		require.True(t, s.IsFeasible())
	})

	t.Run("overload counts the tpm", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 0.5)},
			[]*types.Program{
				testProgram("p1", "Europe/London", "", 0.4),
				testProgram("p2", "Europe/London", "", 0.4),
			},
		)

		s := Evaluate(eng, types.Assignments{"p1": "t1", "p2": "t1"})
		require.Equal(t, 1, s.Metrics.OverloadedTPMs)
		require.False(t, s.IsFeasible())
	})

	t.Run("overload-tolerant tpm does not count", func(t *testing.T) {
		tolerant := testTPM("t1", "Europe/London", 0.5)
		tolerant.AllowOverload = true
		eng := newTestEngine(t,
			[]*types.TPM{tolerant},
			[]*types.Program{
				testProgram("p1", "Europe/London", "", 0.4),
				testProgram("p2", "Europe/London", "", 0.4),
			},
		)

		s := Evaluate(eng, types.Assignments{"p1": "t1", "p2": "t1"})
		require.Zero(t, s.Metrics.OverloadedTPMs)
		require.True(t, s.IsFeasible())
	})

	t.Run("idle tpm and distant assignment are counted", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{
				testTPM("t1", "America/New_York", 1.0),
				testTPM("t2", "Europe/London", 1.0),
			},
			[]*types.Program{testProgram("p1", "Asia/Tokyo", "", 0.3)},
		)

		s := Evaluate(eng, types.Assignments{"p1": "t1"})
		require.Equal(t, 1, s.Metrics.UnusedTPMs)
		require.Equal(t, 1, s.Metrics.TimezoneViolations)
	})

	t.Run("each tpm over the portfolio cap counts once", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 1.0)},
			[]*types.Program{
				testProgram("p1", "Europe/London", "a", 0.2),
				testProgram("p2", "Europe/London", "b", 0.2),
				testProgram("p3", "Europe/London", "c", 0.2),
				testProgram("p4", "Europe/London", "d", 0.2),
			},
		)

		// Four distinct portfolios on one TPM is a single violating TPM,
		// not two units of excess.
		s := Evaluate(eng, types.Assignments{"p1": "t1", "p2": "t1", "p3": "t1", "p4": "t1"})
		require.Equal(t, 1, s.Metrics.PortfolioViolations)
	})

	t.Run("missing pin fails feasibility", func(t *testing.T) {
		pinned := testProgram("p1", "Europe/London", "", 0.3)
		pinned.FixedTPM = "t1"
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 1.0)},
			[]*types.Program{pinned},
		)

		require.False(t, Evaluate(eng, types.Assignments{}).IsFeasible())
		require.True(t, Evaluate(eng, types.Assignments{"p1": "t1"}).IsFeasible())
	})
}

func TestKind_Evaluate(t *testing.T) {
	t.Run("capacity penalizes overload amount", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 0.5)},
			[]*types.Program{
				testProgram("p1", "Europe/London", "", 0.4),
				testProgram("p2", "Europe/London", "", 0.4),
			},
		)

		asn := types.Assignments{"p1": "t1", "p2": "t1"}
		require.InDelta(t, -30.0, KindCapacity.Evaluate(eng, asn), 1e-6, "0.3 overload x100")
	})

	t.Run("utilization penalizes shortfall on loaded tpms only", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{
				testTPM("t1", "Europe/London", 1.0),
				testTPM("t2", "Europe/London", 1.0), // idle, not penalized
			},
			[]*types.Program{testProgram("p1", "Europe/London", "", 0.5)},
		)

		asn := types.Assignments{"p1": "t1"}
		require.InDelta(t, -(0.7-0.5)*5.0, KindUtilization.Evaluate(eng, asn), 1e-9)
	})

	t.Run("timezone tiers near, ok, and far assignments", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1", "Europe/London", 1.0)},
			[]*types.Program{
				testProgram("near", "Europe/Berlin", "", 0.2), // 1h
				testProgram("ok", "Asia/Dubai", "", 0.2),      // 4h
				testProgram("far", "Asia/Tokyo", "", 0.2),     // 9h
			},
		)

		asn := types.Assignments{"near": "t1", "ok": "t1", "far": "t1"}
		require.InDelta(t, 1.0+0.5-1.0, KindTimezone.Evaluate(eng, asn), 1e-9)
	})

	t.Run("portfolio rewards the diversity target and penalizes excess", func(t *testing.T) {
		eng := newTestEngine(t,
			[]*types.TPM{
				testTPM("t1", "Europe/London", 1.0),
				testTPM("t2", "Europe/London", 1.0),
			},
			[]*types.Program{
				testProgram("p1", "Europe/London", "a", 0.2),
				testProgram("p2", "Europe/London", "b", 0.2),
				testProgram("p3", "Europe/London", "c", 0.2),
				testProgram("p4", "Europe/London", "d", 0.2),
				testProgram("p5", "Europe/London", "e", 0.2),
			},
		)

		// t1 carries three distinct tags (one over the cap), t2 exactly two.
		asn := types.Assignments{"p1": "t1", "p2": "t1", "p3": "t1", "p4": "t2", "p5": "t2"}
		require.InDelta(t, -2.0+1.0, KindPortfolio.Evaluate(eng, asn), 1e-9)
	})
}
