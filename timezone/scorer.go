// Package timezone implements the timezone compatibility scorer consumed by
// the scoring and objective layers.
package timezone

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/motiteux/tpm-assignment-optimizer/types"
)

// UTCOffsetScorer scores timezone fit from current UTC offsets.
//
// Offsets are resolved through the IANA timezone database and memoized,
// since the scoring layer queries the same handful of zones for every
// candidate pairing. Empty or unknown identifiers resolve to a zero offset
// (UTC).
type UTCOffsetScorer struct {
	offsets *xsync.Map[string, float64]
	now     func() time.Time
}

// Compile-time assertion that UTCOffsetScorer implements TimezoneScorer.
var _ types.TimezoneScorer = (*UTCOffsetScorer)(nil)

// NewUTCOffsetScorer creates a scorer that resolves offsets at the current
// wall-clock instant.
//
// Returns:
//   - *UTCOffsetScorer: Initialized scorer with an empty offset cache
func NewUTCOffsetScorer() *UTCOffsetScorer {
	return &UTCOffsetScorer{
		offsets: xsync.NewMap[string, float64](),
		now:     time.Now,
	}
}

// NewFixedInstantScorer creates a scorer that resolves offsets at a fixed
// instant. Useful in tests to pin down DST-dependent offsets.
func NewFixedInstantScorer(at time.Time) *UTCOffsetScorer {
	return &UTCOffsetScorer{
		offsets: xsync.NewMap[string, float64](),
		now:     func() time.Time { return at },
	}
}

// OffsetHours returns the current UTC offset in hours for tz.
//
// Parameters:
//   - tz: IANA timezone identifier; empty or unknown values yield 0 (UTC)
//
// Returns:
//   - float64: Offset from UTC in hours (fractional for half-hour zones)
func (s *UTCOffsetScorer) OffsetHours(tz string) float64 {
	if tz == "" {
		return 0
	}
	if offset, ok := s.offsets.Load(tz); ok {
		return offset
	}

	offset := 0.0
	if loc, err := time.LoadLocation(tz); err == nil {
		_, seconds := s.now().In(loc).Zone()
		offset = float64(seconds) / 3600.0
	}
	s.offsets.Store(tz, offset)

	return offset
}

// DifferenceHours returns the absolute offset difference in hours between
// two timezone identifiers.
func (s *UTCOffsetScorer) DifferenceHours(a, b string) float64 {
	diff := s.OffsetHours(a) - s.OffsetHours(b)
	if diff < 0 {
		diff = -diff
	}

	return diff
}

// Score rates how well a TPM's timezone fits a program.
//
// The program side is represented by the barycenter (mean UTC offset) of
// the program timezone plus all stakeholder timezones, so a program with
// stakeholders spread across regions pulls the ideal TPM offset toward the
// middle.
//
// Parameters:
//   - tpmTimezone: TPM's home timezone (empty is treated as UTC)
//   - program: Program with primary and stakeholder timezones
//
// Returns:
//   - float64: 1.0 within PreferredTimezoneSpread hours of the barycenter,
//     0.5 within MaxTimezoneSpread, 0.0 beyond
func (s *UTCOffsetScorer) Score(tpmTimezone string, program *types.Program) float64 {
	zones := make([]string, 0, 1+program.StakeholderTimezones.Len())
	if program.Timezone != "" {
		zones = append(zones, program.Timezone)
	}
	for _, tz := range program.StakeholderTimezones.Values() {
		zones = append(zones, tz)
	}

	// A program with no timezone requirements fits any TPM perfectly.
	if len(zones) == 0 {
		return 1.0
	}

	sum := 0.0
	for _, tz := range zones {
		sum += s.OffsetHours(tz)
	}
	barycenter := sum / float64(len(zones))

	diff := s.OffsetHours(tpmTimezone) - barycenter
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= types.PreferredTimezoneSpread:
		return 1.0
	case diff <= types.MaxTimezoneSpread:
		return 0.5
	default:
		return 0.0
	}
}
