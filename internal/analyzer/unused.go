package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/procspectre/internal/scanner"
)

// UnusedProcedures returns the vocabulary names that no record matched,
// in original case and sorted. Names are compared case-insensitively.
func UnusedProcedures(vocabulary []string, records []scanner.MatchRecord) []string {
	refs := make(map[string]int, len(vocabulary))
	for _, name := range vocabulary {
		refs[strings.ToLower(name)] = 0
	}
	for _, r := range records {
		key := strings.ToLower(r.Pattern)
		if _, ok := refs[key]; ok {
			refs[key]++
		}
	}

	var unused []string
	seen := make(map[string]bool, len(vocabulary))
	for _, name := range vocabulary {
		key := strings.ToLower(name)
		if refs[key] == 0 && !seen[key] {
			unused = append(unused, name)
		}
		seen[key] = true
	}
	sort.Strings(unused)
	return unused
}

// UnusedFindings converts unused procedure names into findings.
func UnusedFindings(names []string) []Finding {
	findings := make([]Finding, 0, len(names))
	for _, name := range names {
		findings = append(findings, Finding{
			Type:      FindingUnusedProcedure,
			Severity:  SeverityMedium,
			Procedure: name,
			Message:   fmt.Sprintf("procedure %q is not referenced anywhere in the code", name),
		})
	}
	return findings
}
