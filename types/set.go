package types

import (
	"sort"
	"strings"
)

// Set is an unordered collection of unique strings.
//
// It backs the set-valued entity fields (skills, conflicts, desired
// programs, portfolios, stakeholder timezones). The zero value is a usable
// empty set for reads; use NewSet or Add for writes.
type Set map[string]struct{}

// NewSet creates a set from the given values, ignoring empty strings.
//
// Parameters:
//   - values: Initial members (empty strings are dropped)
//
// Returns:
//   - Set: Initialized set
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}

	return s
}

// ParseSet builds a set from a comma-separated list, trimming whitespace and
// dropping empty elements. An empty input yields an empty set.
func ParseSet(csv string) Set {
	if strings.TrimSpace(csv) == "" {
		return Set{}
	}

	parts := strings.Split(csv, ",")
	s := make(Set, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			s[trimmed] = struct{}{}
		}
	}

	return s
}

// Has reports whether v is a member of the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]

	return ok
}

// Add inserts v into the set. Empty strings are ignored.
func (s Set) Add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// IntersectCount returns the number of members shared with other.
func (s Set) IntersectCount(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	count := 0
	for v := range small {
		if large.Has(v) {
			count++
		}
	}

	return count
}

// Values returns the members in sorted order.
//
// Sorting keeps iteration deterministic for logging, reporting, and seeded
// random draws.
func (s Set) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)

	return values
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	clone := make(Set, len(s))
	for v := range s {
		clone[v] = struct{}{}
	}

	return clone
}
