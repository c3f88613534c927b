package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxLineSize bounds a single line; minified or generated files can have very long lines.
const maxLineSize = 16 * 1024 * 1024

// Matcher finds pattern occurrences in a single file.
type Matcher interface {
	MatchFile(path string, patterns *PatternSet) ([]MatchRecord, error)
}

// LineMatcher matches patterns against each line of a file as
// case-insensitive substrings. Files are read as UTF-8 text.
type LineMatcher struct{}

// NewLineMatcher returns a LineMatcher.
func NewLineMatcher() *LineMatcher {
	return &LineMatcher{}
}

// MatchFile returns one record per (line, pattern) hit in path. A pattern equal
// to the file's own base name (without extension) is never matched in that file.
// A missing file yields an error wrapping fs.ErrNotExist.
func (m *LineMatcher) MatchFile(path string, patterns *PatternSet) ([]MatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	self := strings.ToLower(baseName(path))

	var records []MatchRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0

	for sc.Scan() {
		line := sc.Text()
		lower := strings.ToLower(line)

		for i, p := range patterns.lower {
			if p == self {
				continue
			}
			if strings.Contains(lower, p) {
				records = append(records, MatchRecord{
					ID:         uuid.NewString(),
					File:       path,
					Line:       lineNum,
					Pattern:    patterns.original[i],
					SourceLine: line,
				})
			}
		}
		lineNum++
	}

	return records, sc.Err()
}

// baseName returns the file name without directory and extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
