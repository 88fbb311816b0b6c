package diff

const (
	// DefaultMaxDistance bounds the symmetric probe around a proposed line.
	DefaultMaxDistance = 5
	// DefaultFallbackFactor scales MaxDistance into the acceptance bound of
	// the global closest-line fallback.
	DefaultFallbackFactor = 2
)

// Locator corrects proposed line numbers onto commentable lines.
type Locator struct {
	MaxDistance    int
	FallbackFactor int
}

// DefaultLocator returns a Locator with the default search bounds.
func DefaultLocator() Locator {
	return Locator{MaxDistance: DefaultMaxDistance, FallbackFactor: DefaultFallbackFactor}
}

func (l Locator) normalized() Locator {
	if l.MaxDistance <= 0 {
		l.MaxDistance = DefaultMaxDistance
	}
	if l.FallbackFactor <= 0 {
		l.FallbackFactor = DefaultFallbackFactor
	}
	return l
}

// Nearest returns line itself when it is in valid. Otherwise it probes
// line-d then line+d for d in 1..MaxDistance and returns the first hit. When
// nothing is close enough it falls back to the globally closest member, lower
// line first on ties, accepted only within FallbackFactor*MaxDistance.
func (l Locator) Nearest(valid LineSet, line int) (int, bool) {
	if len(valid) == 0 {
		return 0, false
	}
	if valid.Contains(line) {
		return line, true
	}

	l = l.normalized()
	for d := 1; d <= l.MaxDistance; d++ {
		if valid.Contains(line - d) {
			return line - d, true
		}
		if valid.Contains(line + d) {
			return line + d, true
		}
	}

	closest, best := 0, -1
	for _, n := range valid.Sorted() {
		dist := abs(n - line)
		if best < 0 || dist < best {
			closest, best = n, dist
		}
	}
	if best <= l.FallbackFactor*l.MaxDistance {
		return closest, true
	}
	return 0, false
}

// NearestValidLine finds the closest added line of patch to line using the
// default fallback factor.
func NearestValidLine(patch string, line, maxDistance int) (int, bool) {
	loc := Locator{MaxDistance: maxDistance, FallbackFactor: DefaultFallbackFactor}
	return loc.Nearest(Parse(patch).Right, line)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
