package types

import "sort"

// Assignments maps program ids to TPM ids.
//
// At most one entry exists per program; programs absent from the map are
// unassigned. The mapping is owned exclusively by the active strategy for
// the duration of one optimization run and is never shared across
// concurrent runs.
type Assignments map[string]string

// Clone returns an independent copy of the mapping.
//
// Local-search strategies clone before mutating trial neighbors so rejected
// trials have zero observable side effects.
func (a Assignments) Clone() Assignments {
	clone := make(Assignments, len(a))
	for progID, tpmID := range a {
		clone[progID] = tpmID
	}

	return clone
}

// ProgramIDs returns the assigned program ids in sorted order.
//
// Sorted iteration keeps scoring, reporting, and seeded random draws
// deterministic across runs.
func (a Assignments) ProgramIDs() []string {
	ids := make([]string, 0, len(a))
	for progID := range a {
		ids = append(ids, progID)
	}
	sort.Strings(ids)

	return ids
}

// ProgramsFor returns the sorted program ids currently mapped to tpmID.
func (a Assignments) ProgramsFor(tpmID string) []string {
	var ids []string
	for progID, assigned := range a {
		if assigned == tpmID {
			ids = append(ids, progID)
		}
	}
	sort.Strings(ids)

	return ids
}
