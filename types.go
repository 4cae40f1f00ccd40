package tpmopt

import "github.com/motiteux/tpm-assignment-optimizer/types"

// Re-export types from the internal types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the
// `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `tpmopt`
// package, while still providing a convenient `tpmopt.TPM`,
// `tpmopt.Logger`, etc. for users.
type (
	TPM         = types.TPM
	Program     = types.Program
	Assignments = types.Assignments
	Set         = types.Set
	Weights     = types.Weights
)

// Re-export interfaces from the internal types package for convenience.
type (
	Strategy         = types.Strategy
	TimezoneScorer   = types.TimezoneScorer
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export domain constants from the internal types package.
const (
	MaxCapacity              = types.MaxCapacity
	MaxPortfolios            = types.MaxPortfolios
	MaxTimezoneSpread        = types.MaxTimezoneSpread
	PreferredTimezoneSpread  = types.PreferredTimezoneSpread
	MinUtilization           = types.MinUtilization
	TargetPortfolioDiversity = types.TargetPortfolioDiversity
	MinLevel                 = types.MinLevel
	MaxLevel                 = types.MaxLevel
)

// NewSet creates a Set from the given values. Re-exported for callers
// building rosters in code rather than loading them from files.
func NewSet(values ...string) Set {
	return types.NewSet(values...)
}
