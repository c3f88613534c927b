package reporter

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ppiankov/procspectre/internal/analyzer"
)

// Format controls report output format.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatSARIF      Format = "sarif"
	FormatSpectreHub Format = "spectrehub"
)

// Metadata holds report context.
type Metadata struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Command   string `json:"command"`
	Mode      string `json:"mode,omitempty"`
	CodeRoot  string `json:"codeRoot,omitempty"`
	Source    string `json:"source,omitempty"`
	URIHash   string `json:"uriHash,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ScanContext records how much was swept, for context in reports.
type ScanContext struct {
	Procedures   int    `json:"procedures"`
	Files        int    `json:"files"`
	FilesSkipped int    `json:"filesSkipped,omitempty"`
	Matches      int    `json:"matches"`
	Workers      int    `json:"workers"`
	Duration     string `json:"duration,omitempty"`
}

// Summary counts findings by severity.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Info   int `json:"info"`
}

// Report is the top-level scan output.
type Report struct {
	Metadata    Metadata           `json:"metadata"`
	Scanned     ScanContext        `json:"scanned"`
	Findings    []analyzer.Finding `json:"findings"`
	MaxSeverity analyzer.Severity  `json:"maxSeverity"`
	Summary     Summary            `json:"summary"`
}

// NewReport builds a report from findings.
func NewReport(command string, findings []analyzer.Finding, version string) Report {
	var summary Summary
	for _, f := range findings {
		summary.Total++
		switch f.Severity {
		case analyzer.SeverityHigh:
			summary.High++
		case analyzer.SeverityMedium:
			summary.Medium++
		case analyzer.SeverityLow:
			summary.Low++
		case analyzer.SeverityInfo:
			summary.Info++
		}
	}

	if findings == nil {
		findings = []analyzer.Finding{}
	}

	return Report{
		Metadata: Metadata{
			Tool:      "procspectre",
			Version:   version,
			Command:   command,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Findings:    findings,
		MaxSeverity: analyzer.MaxSeverity(findings),
		Summary:     summary,
	}
}

// Write outputs the report in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatSARIF:
		return writeSARIF(w, report)
	case FormatSpectreHub:
		return writeSpectreHub(w, report)
	default:
		return writeText(w, report)
	}
}

func writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
