package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTPM_Validate(t *testing.T) {
	valid := func() TPM {
		return TPM{
			ID:            "tpm1",
			Name:          "Alice",
			Timezone:      "America/New_York",
			Skills:        NewSet("ml", "infra"),
			AvailableTime: 0.8,
			Level:         3,
			Conflicts:     Set{},
		}
	}

	t.Run("accepts valid TPM", func(t *testing.T) {
		tpm := valid()
		require.NoError(t, tpm.Validate())
	})

	t.Run("rejects empty id", func(t *testing.T) {
		tpm := valid()
		tpm.ID = ""
		require.ErrorIs(t, tpm.Validate(), ErrEmptyID)
	})

	t.Run("rejects available time out of range", func(t *testing.T) {
		for _, at := range []float64{-0.1, 1.5} {
			tpm := valid()
			tpm.AvailableTime = at
			require.ErrorIs(t, tpm.Validate(), ErrInvalidAvailableTime)
		}
	})

	t.Run("accepts boundary available time", func(t *testing.T) {
		for _, at := range []float64{0, 1} {
			tpm := valid()
			tpm.AvailableTime = at
			require.NoError(t, tpm.Validate())
		}
	})

	t.Run("rejects level out of range", func(t *testing.T) {
		for _, level := range []int{0, 6, -1} {
			tpm := valid()
			tpm.Level = level
			require.ErrorIs(t, tpm.Validate(), ErrInvalidLevel)
		}
	})
}

func TestProgram_Validate(t *testing.T) {
	valid := func() Program {
		return Program{
			ID:              "prog1",
			Name:            "Payments Platform",
			Timezone:        "Europe/London",
			RequiredSkills:  NewSet("payments"),
			RequiredTime:    0.5,
			RequiredLevel:   3,
			ComplexityScore: 2,
			Portfolio:       "fintech",
		}
	}

	t.Run("accepts valid program", func(t *testing.T) {
		prog := valid()
		require.NoError(t, prog.Validate())
	})

	t.Run("rejects zero required time", func(t *testing.T) {
		prog := valid()
		prog.RequiredTime = 0
		require.ErrorIs(t, prog.Validate(), ErrInvalidRequiredTime)
	})

	t.Run("rejects required time above one", func(t *testing.T) {
		prog := valid()
		prog.RequiredTime = 1.01
		require.ErrorIs(t, prog.Validate(), ErrInvalidRequiredTime)
	})

	t.Run("rejects required level out of range", func(t *testing.T) {
		prog := valid()
		prog.RequiredLevel = 7
		require.ErrorIs(t, prog.Validate(), ErrInvalidLevel)
	})

	t.Run("rejects complexity out of range", func(t *testing.T) {
		prog := valid()
		prog.ComplexityScore = 0
		require.ErrorIs(t, prog.Validate(), ErrInvalidComplexity)
	})
}
