package analyzer

import (
	"reflect"
	"testing"

	"github.com/ppiankov/procspectre/internal/scanner"
)

func TestUnusedProcedures(t *testing.T) {
	tests := []struct {
		name    string
		vocab   []string
		records []scanner.MatchRecord
		want    []string
	}{
		{
			name:    "one matched",
			vocab:   []string{"A", "B"},
			records: []scanner.MatchRecord{{Pattern: "A"}},
			want:    []string{"B"},
		},
		{
			name:  "no matches",
			vocab: []string{"B", "A"},
			want:  []string{"A", "B"},
		},
		{
			name:    "all matched",
			vocab:   []string{"A", "B"},
			records: []scanner.MatchRecord{{Pattern: "B"}, {Pattern: "A"}, {Pattern: "A"}},
			want:    nil,
		},
		{
			name:    "pattern case differs",
			vocab:   []string{"MyProc", "Other"},
			records: []scanner.MatchRecord{{Pattern: "myproc"}},
			want:    []string{"Other"},
		},
		{
			name:    "records outside vocabulary ignored",
			vocab:   []string{"A"},
			records: []scanner.MatchRecord{{Pattern: "EXEC_DYNAMIC"}},
			want:    []string{"A"},
		},
		{
			name:  "empty vocabulary",
			vocab: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnusedProcedures(tt.vocab, tt.records)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UnusedProcedures() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnusedFindings(t *testing.T) {
	findings := UnusedFindings([]string{"usp_Old"})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Type != FindingUnusedProcedure || f.Severity != SeverityMedium || f.Procedure != "usp_Old" {
		t.Errorf("unexpected finding: %+v", f)
	}
}
