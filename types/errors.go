package types

import "errors"

// Sentinel errors for the optimizer.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).

// Entity construction errors - returned by NewTPM and NewProgram.
var (
	// ErrInvalidAvailableTime is returned when a TPM's available time is
	// outside [0, 1].
	ErrInvalidAvailableTime = errors.New("available time must be between 0 and 1")

	// ErrInvalidRequiredTime is returned when a program's required time is
	// outside (0, 1].
	ErrInvalidRequiredTime = errors.New("required time must be greater than 0 and at most 1")

	// ErrInvalidLevel is returned when a seniority level is outside [1, 5].
	ErrInvalidLevel = errors.New("level must be between 1 and 5")

	// ErrInvalidComplexity is returned when a program's complexity score is
	// outside [1, 5].
	ErrInvalidComplexity = errors.New("complexity score must be between 1 and 5")

	// ErrEmptyID is returned when an entity is constructed without an id.
	ErrEmptyID = errors.New("entity id is required")
)

// Optimizer errors - public API errors returned by the Optimizer facade.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownMethod is returned when an unrecognized strategy method is
	// requested.
	ErrUnknownMethod = errors.New("unknown optimization method")

	// ErrNoTPMs is returned when optimization is attempted with an empty
	// TPM map.
	ErrNoTPMs = errors.New("no TPMs available for assignment")

	// ErrNoPrograms is returned when optimization is attempted with an
	// empty program map.
	ErrNoPrograms = errors.New("no programs to assign")
)

// Strategy errors - returned by strategy implementations.
var (
	// ErrFixedAssignmentViolated indicates a strategy produced a solution
	// that does not respect a fixed program pin. This is an internal
	// consistency error: neighbor generation must never touch fixed
	// programs, so a violation means a logic bug, not bad input.
	ErrFixedAssignmentViolated = errors.New("solution violates a fixed assignment")

	// ErrInvalidFixedAssignment is returned in strict mode when a fixed
	// pin fails level, conflict, or capacity legality.
	ErrInvalidFixedAssignment = errors.New("fixed assignment violates hard constraints")

	// ErrModelBuild is returned when the exact strategy fails to assemble
	// its constraint model.
	ErrModelBuild = errors.New("failed to build constraint model")

	// ErrSolverFailed is returned when the underlying CP-SAT solver call
	// itself errors (distinct from an infeasible model, which yields a
	// partial result instead).
	ErrSolverFailed = errors.New("solver invocation failed")
)

// Loader errors - returned by the source package.
var (
	// ErrMissingColumn is returned when a required CSV column is absent.
	ErrMissingColumn = errors.New("required column missing")

	// ErrInvalidRecord is returned when a CSV row fails entity validation.
	ErrInvalidRecord = errors.New("invalid record")
)
