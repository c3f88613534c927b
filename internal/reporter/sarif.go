package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ppiankov/procspectre/internal/analyzer"
)

// SARIF 2.1.0 types, minimal subset for valid output.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaults `json:"defaultConfiguration"`
}

type sarifRuleDefaults struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int          `json:"startLine"`
	Snippet   sarifMessage `json:"snippet"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

var ruleDescriptions = map[analyzer.FindingType]string{
	analyzer.FindingUnusedProcedure: "Stored procedure is defined but never referenced in code",
	analyzer.FindingNotImplemented:  "Dynamic call site names no defined stored procedure",
}

var severityToLevel = map[analyzer.Severity]string{
	analyzer.SeverityHigh:   "error",
	analyzer.SeverityMedium: "warning",
	analyzer.SeverityLow:    "note",
	analyzer.SeverityInfo:   "note",
}

func ruleID(ft analyzer.FindingType) string {
	return "procspectre/" + string(ft)
}

func sarifLocationFor(f analyzer.Finding) sarifLocation {
	if f.File != "" {
		loc := sarifLocation{
			PhysicalLocation: &sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(f.File)},
			},
		}
		if f.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{
				StartLine: f.Line,
				Snippet:   sarifMessage{Text: f.SourceLine},
			}
		}
		return loc
	}
	return sarifLocation{
		LogicalLocations: []sarifLogicalLocation{
			{
				Name:               f.Procedure,
				FullyQualifiedName: f.Procedure,
				Kind:               "function",
			},
		},
	}
}

func writeSARIF(w io.Writer, report *Report) error {
	// Rules in first-seen order
	var rules []sarifRule
	seen := make(map[analyzer.FindingType]bool)
	for _, f := range report.Findings {
		if seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		desc := ruleDescriptions[f.Type]
		if desc == "" {
			desc = string(f.Type)
		}
		level := severityToLevel[f.Severity]
		if level == "" {
			level = "warning"
		}
		rules = append(rules, sarifRule{
			ID:               ruleID(f.Type),
			ShortDescription: sarifMessage{Text: desc},
			DefaultConfig:    sarifRuleDefaults{Level: level},
		})
	}
	if rules == nil {
		rules = []sarifRule{}
	}

	results := make([]sarifResult, 0, len(report.Findings))
	for _, f := range report.Findings {
		level := severityToLevel[f.Severity]
		if level == "" {
			level = "note"
		}
		results = append(results, sarifResult{
			RuleID:    ruleID(f.Type),
			Level:     level,
			Message:   sarifMessage{Text: f.Message},
			Locations: []sarifLocation{sarifLocationFor(f)},
		})
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "procspectre",
						Version:        report.Metadata.Version,
						InformationURI: "https://github.com/ppiankov/procspectre",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("encode SARIF: %w", err)
	}
	return nil
}
