package suppress

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.yaml.in/yaml/v3"

	"github.com/ppiankov/procspectre/internal/analyzer"
)

// FileName is the per-project ignore file.
const FileName = ".procspectre-ignore.yml"

// InlineMarker silences a not-implemented finding on the line that carries it.
const InlineMarker = "procspectre:ignore"

// Suppression is a single rule in the ignore file.
// A rule with neither Procedure nor File set matches nothing.
type Suppression struct {
	Procedure string `yaml:"procedure,omitempty"` // supports a trailing *
	File      string `yaml:"file,omitempty"`      // doublestar glob
	Type      string `yaml:"type,omitempty"`
	Reason    string `yaml:"reason,omitempty"`
}

// IgnoreFile is the structure of .procspectre-ignore.yml.
type IgnoreFile struct {
	Suppressions []Suppression `yaml:"suppressions"`
}

// Rules holds loaded suppression rules from all sources.
type Rules struct {
	ignoreFile IgnoreFile
	// Finding types from config exclude.findings
	configFindings []string
}

// LoadRules loads suppression rules from .procspectre-ignore.yml in the given directory.
func LoadRules(dir string) (*Rules, error) {
	r := &Rules{}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &r.ignoreFile); err != nil {
		return nil, err
	}
	return r, nil
}

// WithConfigFindings adds finding-type suppressions from config.
func (r *Rules) WithConfigFindings(findings []string) {
	r.configFindings = findings
}

// IsSuppressed returns true if the finding should be suppressed.
func (r *Rules) IsSuppressed(f *analyzer.Finding) bool {
	if f.Type == analyzer.FindingNotImplemented && HasInlineIgnore(f.SourceLine) {
		return true
	}

	for _, ft := range r.configFindings {
		if strings.EqualFold(string(f.Type), ft) {
			return true
		}
	}

	for _, s := range r.ignoreFile.Suppressions {
		if s.Procedure == "" && s.File == "" {
			continue
		}
		if s.Procedure != "" && !matchName(s.Procedure, f.Procedure) {
			continue
		}
		if s.File != "" && !matchFile(s.File, f.File) {
			continue
		}
		if s.Type == "" || strings.EqualFold(s.Type, string(f.Type)) {
			return true
		}
	}

	return false
}

// Filter removes suppressed findings and returns the remaining ones.
// Returns the filtered list and the number of suppressed findings.
func (r *Rules) Filter(findings []analyzer.Finding) ([]analyzer.Finding, int) {
	var filtered []analyzer.Finding
	suppressed := 0
	for i := range findings {
		if r.IsSuppressed(&findings[i]) {
			suppressed++
		} else {
			filtered = append(filtered, findings[i])
		}
	}
	return filtered, suppressed
}

// matchName matches a procedure name against a pattern that supports trailing wildcards.
func matchName(pattern, name string) bool {
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(name, prefix)
	}
	return pattern == name
}

// matchFile matches a finding's file against a doublestar glob, case-insensitively.
func matchFile(pattern, file string) bool {
	if file == "" {
		return false
	}
	file = strings.TrimPrefix(strings.ToLower(filepath.ToSlash(file)), "/")
	ok, err := doublestar.Match(strings.ToLower(pattern), file)
	return err == nil && ok
}

// HasInlineIgnore returns true if the line contains a procspectre:ignore comment.
func HasInlineIgnore(line string) bool {
	return strings.Contains(line, InlineMarker)
}
