package diff

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func setOf(lines ...int) LineSet {
	s := LineSet{}
	for _, n := range lines {
		s[n] = struct{}{}
	}
	return s
}

func TestRanges(t *testing.T) {
	tests := []struct {
		name string
		set  LineSet
		want []LineRange
	}{
		{name: "empty", set: setOf(), want: nil},
		{name: "single", set: setOf(2), want: []LineRange{{2, 2}}},
		{name: "one run", set: setOf(4, 2, 3), want: []LineRange{{2, 4}}},
		{
			name: "gaps split runs",
			set:  setOf(2, 3, 4, 10, 11, 20),
			want: []LineRange{{2, 4}, {10, 11}, {20, 20}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Ranges(tt.set)); diff != "" {
				t.Errorf("Ranges() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRanges_FlattenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		set := LineSet{}
		n := rng.IntN(60)
		for j := 0; j < n; j++ {
			set[1+rng.IntN(120)] = struct{}{}
		}

		ranges := Ranges(set)
		assert.Equal(t, set.Sorted(), Flatten(ranges).Sorted())

		for k := 1; k < len(ranges); k++ {
			assert.Greater(t, ranges[k].Start, ranges[k-1].End+1, "ranges must be maximal and ordered")
		}
	}
}

func TestFormatRanges(t *testing.T) {
	patch := "@@ -1,3 +1,6 @@\n a\n+b\n+c\n+d\n e\n@@ -9,2 +12,3 @@\n x\n+y\n z"
	assert.Equal(t, "2-4, 13", FormatRanges(ChangedRanges(patch)))
	assert.Equal(t, "", FormatRanges(nil))
}

func TestParse_SingleLineScenarioRange(t *testing.T) {
	sets := Parse("@@ -1,2 +1,3 @@\n line1\n+line2\n line3")
	assert.Equal(t, []LineRange{{Start: 2, End: 2}}, Ranges(sets.Right))
	assert.Empty(t, Ranges(sets.Left))
}
