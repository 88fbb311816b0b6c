package diff

import "strings"

// Index maps file paths to the parsed line sets of their patches.
type Index map[string]LineSets

// NewIndex parses every patch once. Keys are file paths as reported by the
// hosting API.
func NewIndex(patches map[string]string) Index {
	idx := make(Index, len(patches))
	for path, patch := range patches {
		idx[path] = Parse(patch)
	}
	return idx
}

// Lookup returns the indexed path and line sets for path, tolerating a
// leading "./".
func (idx Index) Lookup(path string) (string, LineSets, bool) {
	if ls, ok := idx[path]; ok {
		return path, ls, true
	}
	clean := strings.TrimPrefix(path, "./")
	ls, ok := idx[clean]
	return clean, ls, ok
}
