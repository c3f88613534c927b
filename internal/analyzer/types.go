package analyzer

// Severity indicates the risk level of a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// FindingType identifies what kind of issue was detected.
type FindingType string

const (
	// FindingUnusedProcedure: a defined procedure no code file mentions.
	FindingUnusedProcedure FindingType = "UNUSED_PROCEDURE"
	// FindingNotImplemented: a dynamic-call site naming no defined procedure.
	FindingNotImplemented FindingType = "NOT_IMPLEMENTED"
)

// Finding represents a single analysis result.
type Finding struct {
	Type       FindingType `json:"type"`
	Severity   Severity    `json:"severity"`
	Procedure  string      `json:"procedure,omitempty"`
	File       string      `json:"file,omitempty"`
	Line       int         `json:"line,omitempty"` // 1-based, for display
	SourceLine string      `json:"sourceLine,omitempty"`
	Message    string      `json:"message"`
}

var severityOrder = map[Severity]int{
	SeverityInfo:   0,
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// MaxSeverity returns the highest severity among findings.
func MaxSeverity(findings []Finding) Severity {
	max := SeverityInfo
	for _, f := range findings {
		if severityOrder[f.Severity] > severityOrder[max] {
			max = f.Severity
		}
	}
	return max
}
