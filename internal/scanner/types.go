package scanner

// MatchRecord is one line of one file that contains one search pattern.
// Records are created once per (file, line, pattern) hit and never modified.
type MatchRecord struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	Line       int    `json:"line"` // 0-based
	Pattern    string `json:"pattern"`
	SourceLine string `json:"sourceLine"`
}

// Result holds every match found by a scan, in no particular order.
type Result struct {
	Records      []MatchRecord `json:"records"`
	FilesScanned int           `json:"filesScanned"`
	FilesSkipped int           `json:"filesSkipped,omitempty"`
}
