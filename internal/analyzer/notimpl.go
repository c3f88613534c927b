package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/ppiankov/procspectre/internal/scanner"
)

// NotImplemented returns the records whose source line contains none of the
// vocabulary names (case-insensitive substring), sorted by file and line.
// Records are expected to come from a scan for a single indication pattern.
func NotImplemented(vocabulary []string, records []scanner.MatchRecord) []scanner.MatchRecord {
	names := lo.FilterMap(vocabulary, func(n string, _ int) (string, bool) {
		return strings.ToLower(n), n != ""
	})

	missing := lo.Filter(records, func(r scanner.MatchRecord, _ int) bool {
		line := strings.ToLower(r.SourceLine)
		return !lo.SomeBy(names, func(n string) bool { return strings.Contains(line, n) })
	})

	sort.SliceStable(missing, func(i, j int) bool {
		if missing[i].File != missing[j].File {
			return missing[i].File < missing[j].File
		}
		return missing[i].Line < missing[j].Line
	})
	return missing
}

// NotImplementedFindings converts not-implemented records into findings.
func NotImplementedFindings(records []scanner.MatchRecord) []Finding {
	findings := make([]Finding, 0, len(records))
	for _, r := range records {
		findings = append(findings, Finding{
			Type:       FindingNotImplemented,
			Severity:   SeverityHigh,
			File:       r.File,
			Line:       r.Line + 1,
			SourceLine: r.SourceLine,
			Message:    fmt.Sprintf("%q call site names no known procedure", r.Pattern),
		})
	}
	return findings
}
