package types

import "fmt"

// TPM represents a technical program manager eligible to receive programs.
//
// A TPM is read-only reference data for the duration of an optimization run.
// Bookkeeping such as the set of currently assigned programs is owned by the
// active strategy, never stored on the entity.
type TPM struct {
	// ID uniquely identifies the TPM.
	ID string `yaml:"id"`

	// Name is the human-readable display name.
	Name string `yaml:"name"`

	// Timezone is the TPM's home IANA timezone identifier (e.g.
	// "America/New_York"). Empty or unknown identifiers are treated as UTC.
	Timezone string `yaml:"timezone"`

	// Skills is the set of skills the TPM offers.
	Skills Set `yaml:"skills"`

	// AvailableTime is the fractional capacity in [0, 1] the TPM can take on.
	AvailableTime float64 `yaml:"availableTime"`

	// Level is the seniority tier in [1, 5].
	Level int `yaml:"level"`

	// Conflicts is the set of program ids this TPM must never receive.
	Conflicts Set `yaml:"conflicts"`

	// AllowOverload permits total assigned time beyond AvailableTime.
	AllowOverload bool `yaml:"allowOverload"`

	// FixedProgram optionally names a program permanently pinned to this TPM.
	FixedProgram string `yaml:"fixedProgram"`

	// DesiredPrograms is the set of program ids the TPM prefers to receive.
	DesiredPrograms Set `yaml:"desiredPrograms"`

	// Portfolios is the set of portfolio tags the TPM declares affinity for.
	Portfolios Set `yaml:"portfolios"`
}

// Validate checks the TPM's field ranges.
//
// A validation failure is fatal to loading that single record, not to the
// whole run.
//
// Returns:
//   - error: Wrapped sentinel error describing the first violation, nil if valid
func (t *TPM) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tpm: %w", ErrEmptyID)
	}
	if t.AvailableTime < 0 || t.AvailableTime > 1 {
		return fmt.Errorf("tpm %s: %w: got %v", t.ID, ErrInvalidAvailableTime, t.AvailableTime)
	}
	if t.Level < MinLevel || t.Level > MaxLevel {
		return fmt.Errorf("tpm %s: %w: got %d", t.ID, ErrInvalidLevel, t.Level)
	}

	return nil
}
