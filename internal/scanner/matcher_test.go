package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMatchFile_Basic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "OrderService.cs", `class OrderService {
	void Load() { Exec("usp_GetOrders"); }
	void Save() { Exec("usp_SaveOrder"); }
}`)

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"usp_GetOrders", "usp_SaveOrder", "usp_Unused"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	if records[0].Pattern != "usp_GetOrders" || records[0].Line != 1 {
		t.Errorf("record[0] = %+v, want usp_GetOrders on line 1", records[0])
	}
	if records[1].Pattern != "usp_SaveOrder" || records[1].Line != 2 {
		t.Errorf("record[1] = %+v, want usp_SaveOrder on line 2", records[1])
	}
	if records[0].SourceLine != `	void Load() { Exec("usp_GetOrders"); }` {
		t.Errorf("source line not preserved: %q", records[0].SourceLine)
	}
	if records[0].File != path {
		t.Errorf("file = %q, want %q", records[0].File, path)
	}
}

func TestMatchFile_ZeroBasedLineNumbers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.sql", "EXEC target\nnothing\nEXEC target")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"target"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Line != 0 || records[1].Line != 2 {
		t.Errorf("lines = %d,%d, want 0,2", records[0].Line, records[1].Line)
	}
}

func TestMatchFile_CaseInsensitive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.cs", "call myproc\nCALL MYPROC\nCall MyProc")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"MyProc"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Pattern != "MyProc" {
			t.Errorf("pattern = %q, want original case MyProc", r.Pattern)
		}
	}
}

func TestMatchFile_SelfReferenceSuppressed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.sql", "CREATE PROCEDURE A\nAS\nSELECT B")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"A", "B"}))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.Pattern == "A" {
			t.Errorf("A.sql should not reference itself: %+v", r)
		}
	}
	if len(records) != 1 || records[0].Pattern != "B" {
		t.Errorf("expected single B record, got %+v", records)
	}
}

func TestMatchFile_SelfReferenceIgnoresCase(t *testing.T) {
	path := writeFile(t, t.TempDir(), "usp_getorders.sql", "EXEC usp_GetOrders")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"usp_GetOrders"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}

func TestMatchFile_MultiplePatternsSameLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.sql", "EXEC first; EXEC second;")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"first", "second"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected one record per pattern, got %d", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Error("record ids must be unique")
	}
}

func TestMatchFile_CRLF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "win.cs", "Exec(\"p1\");\r\nExec(\"p2\");\r\n")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"p2"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Line != 1 {
		t.Fatalf("expected p2 on line 1, got %+v", records)
	}
	if records[0].SourceLine != `Exec("p2");` {
		t.Errorf("source line = %q", records[0].SourceLine)
	}
}

func TestMatchFile_InvalidUTF8(t *testing.T) {
	path := writeFile(t, t.TempDir(), "latin1.cs", "caf\xe9 EXEC proc_x")

	records, err := NewLineMatcher().MatchFile(path, NewPatternSet([]string{"proc_x"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestMatchFile_Missing(t *testing.T) {
	_, err := NewLineMatcher().MatchFile(filepath.Join(t.TempDir(), "gone.cs"), NewPatternSet([]string{"x"}))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewPatternSet_DropsEmpty(t *testing.T) {
	ps := NewPatternSet([]string{"a", "", "B"})
	if ps.Len() != 2 {
		t.Fatalf("len = %d, want 2", ps.Len())
	}
	got := ps.Patterns()
	if got[0] != "a" || got[1] != "B" {
		t.Errorf("patterns = %v", got)
	}
}
