package types

// TimezoneScorer computes UTC offsets and timezone compatibility scores.
//
// The scoring and objective layers call it on every candidate pairing, so
// implementations should memoize offset lookups. Unknown or empty timezone
// identifiers default to a zero UTC offset.
type TimezoneScorer interface {
	// OffsetHours returns the current UTC offset in hours for an IANA
	// timezone identifier. Empty or unknown identifiers yield 0.
	OffsetHours(tz string) float64

	// DifferenceHours returns the absolute offset difference in hours
	// between two timezone identifiers.
	DifferenceHours(a, b string) float64

	// Score rates how well a TPM's timezone fits a program.
	//
	// The program side is the barycenter (mean UTC offset) of the program
	// timezone plus all stakeholder timezones. A program with no timezone
	// requirements at all scores as a perfect match.
	//
	// Returns:
	//   - float64: 1.0 if the difference is within PreferredTimezoneSpread,
	//     0.5 if within MaxTimezoneSpread, 0.0 otherwise
	Score(tpmTimezone string, program *Program) float64
}
