package types

import "fmt"

// Program represents a work item requiring assignment to exactly one TPM.
//
// Like TPM, a Program is read-only reference data once constructed; only the
// assignment mapping mutates during an optimization run.
type Program struct {
	// ID uniquely identifies the program.
	ID string `yaml:"id"`

	// Name is the human-readable display name.
	Name string `yaml:"name"`

	// Timezone is the program's primary IANA timezone identifier.
	Timezone string `yaml:"timezone"`

	// RequiredSkills is the set of skills the program needs.
	RequiredSkills Set `yaml:"requiredSkills"`

	// RequiredTime is the fractional capacity in (0, 1] the program consumes.
	RequiredTime float64 `yaml:"requiredTime"`

	// RequiredLevel is the minimum seniority tier in [1, 5].
	RequiredLevel int `yaml:"requiredLevel"`

	// FixedTPM optionally pins the program to a specific TPM. Every valid
	// solution must preserve the pin.
	FixedTPM string `yaml:"fixedTpm"`

	// StakeholderTimezones lists additional timezones that participate in
	// the barycentric timezone fit calculation.
	StakeholderTimezones Set `yaml:"stakeholderTimezones"`

	// ComplexityScore rates the program's difficulty in [1, 5]. Heuristic
	// strategies assign more complex programs first.
	ComplexityScore int `yaml:"complexityScore"`

	// Portfolio is the categorical tag used to bound topic diversity per TPM.
	Portfolio string `yaml:"portfolio"`
}

// Validate checks the program's field ranges.
//
// Returns:
//   - error: Wrapped sentinel error describing the first violation, nil if valid
func (p *Program) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("program: %w", ErrEmptyID)
	}
	if p.RequiredTime <= 0 || p.RequiredTime > 1 {
		return fmt.Errorf("program %s: %w: got %v", p.ID, ErrInvalidRequiredTime, p.RequiredTime)
	}
	if p.RequiredLevel < MinLevel || p.RequiredLevel > MaxLevel {
		return fmt.Errorf("program %s: %w: got %d", p.ID, ErrInvalidLevel, p.RequiredLevel)
	}
	if p.ComplexityScore < MinLevel || p.ComplexityScore > MaxLevel {
		return fmt.Errorf("program %s: %w: got %d", p.ID, ErrInvalidComplexity, p.ComplexityScore)
	}

	return nil
}
