package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"whitespace only", "  ", nil},
		{"single value", "ml", []string{"ml"}},
		{"multiple values", "ml,infra,security", []string{"infra", "ml", "security"}},
		{"trims whitespace", " ml , infra ", []string{"infra", "ml"}},
		{"drops empty elements", "ml,,infra,", []string{"infra", "ml"}},
		{"deduplicates", "ml,ml", []string{"ml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSet(tt.input)
			if len(tt.want) == 0 {
				require.Empty(t, got)

				return
			}
			require.Equal(t, tt.want, got.Values())
		})
	}
}

func TestSet_IntersectCount(t *testing.T) {
	a := NewSet("ml", "infra", "security")
	b := NewSet("infra", "security", "data")

	require.Equal(t, 2, a.IntersectCount(b))
	require.Equal(t, 2, b.IntersectCount(a))
	require.Equal(t, 0, a.IntersectCount(Set{}))
	require.Equal(t, 0, Set{}.IntersectCount(a))
}

func TestSet_Clone(t *testing.T) {
	a := NewSet("x", "y")
	clone := a.Clone()
	clone.Add("z")

	require.True(t, clone.Has("z"))
	require.False(t, a.Has("z"))
}

func TestAssignments_Clone(t *testing.T) {
	asn := Assignments{"p1": "t1", "p2": "t2"}
	clone := asn.Clone()
	clone["p3"] = "t1"

	require.Len(t, asn, 2)
	require.Len(t, clone, 3)
}

func TestAssignments_ProgramsFor(t *testing.T) {
	asn := Assignments{"p3": "t1", "p1": "t1", "p2": "t2"}

	require.Equal(t, []string{"p1", "p3"}, asn.ProgramsFor("t1"))
	require.Equal(t, []string{"p2"}, asn.ProgramsFor("t2"))
	require.Empty(t, asn.ProgramsFor("t9"))
}
