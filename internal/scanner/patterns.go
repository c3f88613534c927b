package scanner

import "strings"

// PatternSet is a read-only list of search patterns prepared for
// case-insensitive matching. It is safe for concurrent use.
type PatternSet struct {
	original []string
	lower    []string
}

// NewPatternSet prepares patterns for matching. Empty patterns are dropped,
// since they would match every line.
func NewPatternSet(patterns []string) *PatternSet {
	ps := &PatternSet{
		original: make([]string, 0, len(patterns)),
		lower:    make([]string, 0, len(patterns)),
	}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		ps.original = append(ps.original, p)
		ps.lower = append(ps.lower, strings.ToLower(p))
	}
	return ps
}

// Len returns the number of patterns.
func (ps *PatternSet) Len() int {
	return len(ps.original)
}

// Patterns returns the patterns in their original case.
func (ps *PatternSet) Patterns() []string {
	out := make([]string, len(ps.original))
	copy(out, ps.original)
	return out
}
