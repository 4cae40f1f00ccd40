package tpmopt

import "github.com/motiteux/tpm-assignment-optimizer/types"

// Re-export sentinel errors from the internal types package so callers can
// match with errors.Is against the root package only.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrUnknownMethod is returned when the requested optimization method
	// does not exist.
	ErrUnknownMethod = types.ErrUnknownMethod

	// ErrNoTPMs is returned when the roster is empty.
	ErrNoTPMs = types.ErrNoTPMs

	// ErrNoPrograms is returned when the program portfolio is empty.
	ErrNoPrograms = types.ErrNoPrograms

	// ErrInvalidFixedAssignment is returned when fixed assignment pins are
	// contradictory, reference unknown entities, or (in strict mode)
	// violate a hard constraint.
	ErrInvalidFixedAssignment = types.ErrInvalidFixedAssignment

	// ErrModelBuild is returned when the exact strategy fails to encode
	// the problem.
	ErrModelBuild = types.ErrModelBuild

	// ErrSolverFailed is returned when the exact strategy's solver fails.
	ErrSolverFailed = types.ErrSolverFailed
)
