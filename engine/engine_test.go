package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motiteux/tpm-assignment-optimizer/timezone"
	"github.com/motiteux/tpm-assignment-optimizer/types"
)

var testWeights = types.Weights{
	Timezone:   0.30,
	Skill:      0.25,
	Level:      0.20,
	Portfolio:  0.15,
	Preference: 0.10,
}

// january pins DST-dependent offsets to their standard values.
var january = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, tpms []*types.TPM, programs []*types.Program) *Engine {
	t.Helper()

	eng, err := New(tpms, programs, testWeights, timezone.NewFixedInstantScorer(january))
	require.NoError(t, err)

	return eng
}

func testTPM(id string) *types.TPM {
	return &types.TPM{
		ID:            id,
		Name:          id,
		Timezone:      "Europe/London",
		Skills:        types.NewSet("ml", "infra"),
		AvailableTime: 1.0,
		Level:         3,
	}
}

func testProgram(id string) *types.Program {
	return &types.Program{
		ID:              id,
		Name:            id,
		Timezone:        "Europe/London",
		RequiredSkills:  types.NewSet("ml"),
		RequiredTime:    0.4,
		RequiredLevel:   3,
		ComplexityScore: 2,
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("rejects empty roster", func(t *testing.T) {
		_, err := New(nil, []*types.Program{testProgram("p1")}, testWeights, timezone.NewFixedInstantScorer(january))
		require.ErrorIs(t, err, types.ErrNoTPMs)
	})

	t.Run("rejects empty portfolio", func(t *testing.T) {
		_, err := New([]*types.TPM{testTPM("t1")}, nil, testWeights, timezone.NewFixedInstantScorer(january))
		require.ErrorIs(t, err, types.ErrNoPrograms)
	})

	t.Run("rejects duplicate tpm ids", func(t *testing.T) {
		_, err := New(
			[]*types.TPM{testTPM("t1"), testTPM("t1")},
			[]*types.Program{testProgram("p1")},
			testWeights, timezone.NewFixedInstantScorer(january),
		)
		require.ErrorContains(t, err, "duplicate tpm id")
	})

	t.Run("rejects invalid entity", func(t *testing.T) {
		bad := testTPM("t1")
		bad.Level = 0
		_, err := New(
			[]*types.TPM{bad},
			[]*types.Program{testProgram("p1")},
			testWeights, timezone.NewFixedInstantScorer(january),
		)
		require.ErrorIs(t, err, types.ErrInvalidLevel)
	})
}

func TestNew_FixedAssignmentMerge(t *testing.T) {
	t.Run("merges both sides", func(t *testing.T) {
		t1 := testTPM("t1")
		t1.FixedProgram = "p1"
		p2 := testProgram("p2")
		p2.FixedTPM = "t2"

		eng := newTestEngine(t,
			[]*types.TPM{t1, testTPM("t2")},
			[]*types.Program{testProgram("p1"), p2},
		)
		require.Equal(t, types.Assignments{"p1": "t1", "p2": "t2"}, eng.FixedAssignments())
	})

	t.Run("rejects pin to unknown tpm", func(t *testing.T) {
		p1 := testProgram("p1")
		p1.FixedTPM = "ghost"
		_, err := New(
			[]*types.TPM{testTPM("t1")},
			[]*types.Program{p1},
			testWeights, timezone.NewFixedInstantScorer(january),
		)
		require.ErrorIs(t, err, types.ErrInvalidFixedAssignment)
	})

	t.Run("rejects contradictory pins", func(t *testing.T) {
		t1 := testTPM("t1")
		t1.FixedProgram = "p1"
		p1 := testProgram("p1")
		p1.FixedTPM = "t2"
		_, err := New(
			[]*types.TPM{t1, testTPM("t2")},
			[]*types.Program{p1},
			testWeights, timezone.NewFixedInstantScorer(january),
		)
		require.ErrorIs(t, err, types.ErrInvalidFixedAssignment)
	})

	t.Run("agreeing pins are fine", func(t *testing.T) {
		t1 := testTPM("t1")
		t1.FixedProgram = "p1"
		p1 := testProgram("p1")
		p1.FixedTPM = "t1"

		eng := newTestEngine(t, []*types.TPM{t1}, []*types.Program{p1})
		require.Equal(t, "t1", eng.FixedFor("p1"))
	})
}

func TestEngine_ValidateAssignment(t *testing.T) {
	t.Run("accepts a clean pairing", func(t *testing.T) {
		eng := newTestEngine(t, []*types.TPM{testTPM("t1")}, []*types.Program{testProgram("p1")})
		require.True(t, eng.ValidateAssignment("p1", "t1", nil))
	})

	t.Run("rejects unknown entities", func(t *testing.T) {
		eng := newTestEngine(t, []*types.TPM{testTPM("t1")}, []*types.Program{testProgram("p1")})
		require.False(t, eng.ValidateAssignment("ghost", "t1", nil))
		require.False(t, eng.ValidateAssignment("p1", "ghost", nil))
	})

	t.Run("rejects conflicted program", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.Conflicts = types.NewSet("p1")
		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{testProgram("p1")})
		require.False(t, eng.ValidateAssignment("p1", "t1", nil))
	})

	t.Run("rejects under-leveled tpm", func(t *testing.T) {
		prog := testProgram("p1")
		prog.RequiredLevel = 5
		eng := newTestEngine(t, []*types.TPM{testTPM("t1")}, []*types.Program{prog})
		require.False(t, eng.ValidateAssignment("p1", "t1", nil))
	})

	t.Run("rejects capacity overflow", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.AvailableTime = 0.5
		p1 := testProgram("p1")
		p2 := testProgram("p2")
		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{p1, p2})

		require.True(t, eng.ValidateAssignment("p1", "t1", nil))
		require.False(t, eng.ValidateAssignment("p2", "t1", types.Assignments{"p1": "t1"}))
	})

	t.Run("overload-tolerant tpm ignores capacity", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.AvailableTime = 0.5
		tpm.AllowOverload = true
		eng := newTestEngine(t,
			[]*types.TPM{tpm},
			[]*types.Program{testProgram("p1"), testProgram("p2")},
		)
		require.True(t, eng.ValidateAssignment("p2", "t1", types.Assignments{"p1": "t1"}))
	})

	t.Run("capacity check ignores the program's own slot", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.AvailableTime = 0.4
		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{testProgram("p1")})
		// p1 is already placed on t1; re-validating it must not double count.
		require.True(t, eng.ValidateAssignment("p1", "t1", types.Assignments{"p1": "t1"}))
	})

	t.Run("float accumulation stays within capacity", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.AvailableTime = 0.3
		mk := func(id string) *types.Program {
			p := testProgram(id)
			p.RequiredTime = 0.1

			return p
		}
		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{mk("p1"), mk("p2"), mk("p3")})
		require.True(t, eng.ValidateAssignment("p3", "t1", types.Assignments{"p1": "t1", "p2": "t1"}))
	})

	t.Run("rejects a third distinct portfolio", func(t *testing.T) {
		mk := func(id, portfolio string) *types.Program {
			p := testProgram(id)
			p.RequiredTime = 0.2
			p.Portfolio = portfolio

			return p
		}
		eng := newTestEngine(t,
			[]*types.TPM{testTPM("t1")},
			[]*types.Program{mk("p1", "fintech"), mk("p2", "infra"), mk("p3", "growth"), mk("p4", "fintech")},
		)
		current := types.Assignments{"p1": "t1", "p2": "t1"}

		require.False(t, eng.ValidateAssignment("p3", "t1", current), "third distinct tag exceeds the cap")
		require.True(t, eng.ValidateAssignment("p4", "t1", current), "an already-carried tag adds no diversity")
		// Re-validating a placed program must not count its own tag twice.
		require.True(t, eng.ValidateAssignment("p1", "t1", current))
	})

	t.Run("rejects program pinned elsewhere", func(t *testing.T) {
		p1 := testProgram("p1")
		p1.FixedTPM = "t2"
		eng := newTestEngine(t, []*types.TPM{testTPM("t1"), testTPM("t2")}, []*types.Program{p1})
		require.False(t, eng.ValidateAssignment("p1", "t1", nil))
		require.True(t, eng.ValidateAssignment("p1", "t2", nil))
	})
}

func TestLevelScore(t *testing.T) {
	tests := []struct {
		name     string
		tpmLevel int
		required int
		want     float64
	}{
		{"under-leveled", 2, 3, 0.0},
		{"exact match", 3, 3, 1.0},
		{"one above", 4, 3, 0.7},
		{"two above", 5, 3, 0.4},
		{"far above", 5, 1, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, LevelScore(tt.tpmLevel, tt.required))
		})
	}
}

func TestSkillScore(t *testing.T) {
	tpm := testTPM("t1") // skills: ml, infra

	t.Run("full overlap", func(t *testing.T) {
		prog := testProgram("p1")
		prog.RequiredSkills = types.NewSet("ml", "infra")
		require.Equal(t, 1.0, SkillScore(tpm, prog))
	})

	t.Run("partial overlap", func(t *testing.T) {
		prog := testProgram("p1")
		prog.RequiredSkills = types.NewSet("ml", "security")
		require.Equal(t, 0.5, SkillScore(tpm, prog))
	})

	t.Run("no required skills is a full match", func(t *testing.T) {
		prog := testProgram("p1")
		prog.RequiredSkills = types.Set{}
		require.Equal(t, 1.0, SkillScore(tpm, prog))
	})
}

func TestEngine_AssignmentScore(t *testing.T) {
	t.Run("illegal pairing scores negative infinity", func(t *testing.T) {
		prog := testProgram("p1")
		prog.RequiredLevel = 5
		eng := newTestEngine(t, []*types.TPM{testTPM("t1")}, []*types.Program{prog})
		require.True(t, math.IsInf(eng.AssignmentScore("p1", "t1", nil), -1))
	})

	t.Run("ideal pairing scores every component at full credit", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.Portfolios = types.NewSet("fintech")
		tpm.DesiredPrograms = types.NewSet("p1")
		prog := testProgram("p1")
		prog.Portfolio = "fintech"

		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{prog})

		// tz 0.30x1.0 + skill 0.25x1.0 + level 0.20x1.0 + portfolio
		// 0.15x1.0 + preference 0.10x0.2 flat bonus.
		want := testWeights.Timezone + testWeights.Skill + testWeights.Level +
			testWeights.Portfolio + testWeights.Preference*0.2
		require.InDelta(t, want, eng.AssignmentScore("p1", "t1", nil), 1e-9)
	})

	t.Run("portfolio continuity through current assignments", func(t *testing.T) {
		tpm := testTPM("t1")
		p1 := testProgram("p1")
		p1.Portfolio = "fintech"
		p2 := testProgram("p2")
		p2.Portfolio = "fintech"

		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{p1, p2})

		// Cold placement earns the half continuity credit; joining an
		// existing portfolio earns full credit.
		cold := eng.AssignmentScore("p1", "t1", nil)
		warm := eng.AssignmentScore("p2", "t1", types.Assignments{"p1": "t1"})
		require.InDelta(t, testWeights.Portfolio*0.5, warm-cold, 1e-9)
	})

	t.Run("timezone weight separates near and far pairings", func(t *testing.T) {
		near := testTPM("near") // London
		far := testTPM("far")
		far.Timezone = "Asia/Tokyo"
		prog := testProgram("p1") // London

		eng := newTestEngine(t, []*types.TPM{near, far}, []*types.Program{prog})
		require.InDelta(t, testWeights.Timezone,
			eng.AssignmentScore("p1", "near", nil)-eng.AssignmentScore("p1", "far", nil), 1e-9)
	})
}

func TestEngine_Load(t *testing.T) {
	eng := newTestEngine(t,
		[]*types.TPM{testTPM("t1"), testTPM("t2")},
		[]*types.Program{testProgram("p1"), testProgram("p2"), testProgram("p3")},
	)

	asn := types.Assignments{"p1": "t1", "p2": "t1", "p3": "t2"}
	require.InDelta(t, 0.8, eng.Load("t1", asn), 1e-9)
	require.InDelta(t, 0.4, eng.Load("t2", asn), 1e-9)
	require.Zero(t, eng.Load("t9", asn))
}

func TestEngine_ValidateFixedAssignments(t *testing.T) {
	p1 := testProgram("p1")
	p1.FixedTPM = "t1"
	eng := newTestEngine(t,
		[]*types.TPM{testTPM("t1"), testTPM("t2")},
		[]*types.Program{p1, testProgram("p2")},
	)

	require.True(t, eng.ValidateFixedAssignments(types.Assignments{"p1": "t1"}))
	require.True(t, eng.ValidateFixedAssignments(types.Assignments{"p1": "t1", "p2": "t2"}))
	require.False(t, eng.ValidateFixedAssignments(types.Assignments{"p1": "t2"}))
	require.False(t, eng.ValidateFixedAssignments(types.Assignments{"p2": "t2"}))
}

func TestEngine_Capacity(t *testing.T) {
	t1 := testTPM("t1")
	t1.AvailableTime = 0.8
	t2 := testTPM("t2")
	t2.AvailableTime = 0.5
	t2.AllowOverload = true
	pinned := testProgram("pinned")
	pinned.FixedTPM = "t2"

	eng := newTestEngine(t,
		[]*types.TPM{t1, t2},
		[]*types.Program{testProgram("p1"), testProgram("p2"), pinned}, // 1.2 demand
	)

	report := eng.Capacity()
	require.InDelta(t, 1.3, report.TotalSupply, 1e-9)
	require.InDelta(t, 1.2, report.TotalDemand, 1e-9)
	require.True(t, report.Feasible())
	require.Equal(t, []string{"t2"}, report.OverloadTolerant)
	require.Len(t, report.FixedLoad, 1)
	require.InDelta(t, 0.4, report.FixedLoad["t2"], 1e-9, "the pin claims part of t2")
}

func TestEngine_FixedAssignmentIssues(t *testing.T) {
	t.Run("clean pins produce no issues", func(t *testing.T) {
		p1 := testProgram("p1")
		p1.FixedTPM = "t1"
		eng := newTestEngine(t, []*types.TPM{testTPM("t1")}, []*types.Program{p1})
		require.Empty(t, eng.FixedAssignmentIssues())
	})

	t.Run("reports level and capacity violations", func(t *testing.T) {
		tpm := testTPM("t1")
		tpm.AvailableTime = 0.3
		p1 := testProgram("p1")
		p1.FixedTPM = "t1"
		p1.RequiredLevel = 5

		eng := newTestEngine(t, []*types.TPM{tpm}, []*types.Program{p1})
		issues := eng.FixedAssignmentIssues()
		require.Len(t, issues, 2)
	})
}

func TestEngine_LevelTiers(t *testing.T) {
	t5 := testTPM("t5")
	t5.Level = 5
	prog := testProgram("p1")
	prog.RequiredLevel = 4
	pinned := testProgram("pinned") // level 3, 0.4 FTE
	pinned.FixedTPM = "t5"

	eng := newTestEngine(t, []*types.TPM{testTPM("t3"), t5}, []*types.Program{prog, pinned})

	tiers := eng.LevelTiers()
	require.Len(t, tiers, types.MaxLevel-types.MinLevel+1)

	require.Equal(t, 3, tiers[2].Level)
	require.InDelta(t, 1.0, tiers[2].Supply, 1e-9)
	require.Zero(t, tiers[2].Demand, "pinned demand is already served")

	require.Equal(t, 4, tiers[3].Level)
	require.Zero(t, tiers[3].Supply)
	require.InDelta(t, 0.4, tiers[3].Demand, 1e-9)

	require.Equal(t, 5, tiers[4].Level)
	require.InDelta(t, 0.6, tiers[4].Supply, 1e-9, "the pin eats into t5's time")
	require.Zero(t, tiers[4].Demand)
}
