package types

// Hard constraint limits applied by the constraint engine.
//
// These bound what an assignment is allowed to do regardless of how
// desirable it scores.
const (
	// MaxCapacity is the nominal full load of a TPM in FTE fractions.
	MaxCapacity = 1.0

	// MaxPortfolios is the maximum number of distinct portfolio tags a TPM
	// may host simultaneously.
	MaxPortfolios = 2

	// MaxTimezoneSpread is the largest acceptable offset difference, in
	// hours, between a TPM and a program before the pairing counts as a
	// timezone violation.
	MaxTimezoneSpread = 6.0

	// MinLevel and MaxLevel bound the seniority tiers for both TPMs and
	// program requirements.
	MinLevel = 1
	MaxLevel = 5
)

// Soft constraint targets used by the scoring and objective layers.
const (
	// MinUtilization is the utilization floor below which a loaded TPM is
	// penalized.
	MinUtilization = 0.70

	// TargetPortfolioDiversity is the portfolio count a TPM is rewarded for
	// hitting exactly.
	TargetPortfolioDiversity = 2

	// PreferredTimezoneSpread is the offset difference, in hours, within
	// which a pairing counts as a perfect timezone match.
	PreferredTimezoneSpread = 3.0
)
