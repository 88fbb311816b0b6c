package diff

import (
	"strconv"
	"strings"
)

// LineRange is an inclusive run of consecutive line numbers.
type LineRange struct {
	Start int
	End   int
}

// String renders a single line as "7" and a run as "7-9".
func (r LineRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// Ranges compresses a set into ordered, maximal, non-overlapping runs.
func Ranges(set LineSet) []LineRange {
	if len(set) == 0 {
		return nil
	}
	sorted := set.Sorted()

	var out []LineRange
	cur := LineRange{Start: sorted[0], End: sorted[0]}
	for _, n := range sorted[1:] {
		if n == cur.End+1 {
			cur.End = n
			continue
		}
		out = append(out, cur)
		cur = LineRange{Start: n, End: n}
	}
	return append(out, cur)
}

// Flatten expands ranges back into a set.
func Flatten(ranges []LineRange) LineSet {
	set := LineSet{}
	for _, r := range ranges {
		for n := r.Start; n <= r.End; n++ {
			set[n] = struct{}{}
		}
	}
	return set
}

// FormatRanges renders ranges as a comma separated list, e.g. "2-4, 10".
func FormatRanges(ranges []LineRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// ChangedRanges returns the added-line runs of patch.
func ChangedRanges(patch string) []LineRange {
	return Ranges(Parse(patch).Right)
}
