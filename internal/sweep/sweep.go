// Package sweep wires discovery, the procedure vocabulary, and the scan
// coordinator into the two report modes: unused procedures and
// not-implemented call sites.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/procspectre/internal/analyzer"
	"github.com/ppiankov/procspectre/internal/procedures"
	"github.com/ppiankov/procspectre/internal/scanner"
)

// FileDiscoverer lists the code files to scan under a root.
type FileDiscoverer interface {
	Discover(root string) ([]string, error)
}

// Runner runs one sweep over a code root.
type Runner struct {
	files       FileDiscoverer
	procedures  procedures.Source
	coordinator *scanner.Coordinator
}

// NewRunner returns a Runner using the given collaborators.
func NewRunner(files FileDiscoverer, source procedures.Source, coordinator *scanner.Coordinator) *Runner {
	return &Runner{files: files, procedures: source, coordinator: coordinator}
}

// Stats summarizes a sweep.
type Stats struct {
	Procedures   int           `json:"procedures"`
	Files        int           `json:"files"`
	FilesScanned int           `json:"filesScanned"`
	FilesSkipped int           `json:"filesSkipped"`
	Matches      int           `json:"matches"`
	Workers      int           `json:"workers"`
	Duration     time.Duration `json:"duration"`
}

// UnusedResult is the outcome of an unused-procedure sweep.
type UnusedResult struct {
	Unused []string
	Stats  Stats
}

// NotImplementedResult is the outcome of a not-implemented sweep.
type NotImplementedResult struct {
	Records []scanner.MatchRecord
	Stats   Stats
}

// Unused reports the procedures no file under codeRoot mentions.
func (r *Runner) Unused(ctx context.Context, codeRoot string) (UnusedResult, error) {
	start := time.Now()

	vocab, files, err := r.prepare(ctx, codeRoot)
	if err != nil {
		return UnusedResult{}, err
	}

	scan, err := r.coordinator.Scan(ctx, files, scanner.NewPatternSet(vocab))
	if err != nil {
		return UnusedResult{}, fmt.Errorf("scan: %w", err)
	}

	unused := analyzer.UnusedProcedures(vocab, scan.Records)
	stats := r.stats(vocab, files, scan, start)
	slog.Info("unused sweep complete",
		"procedures", stats.Procedures,
		"files", stats.FilesScanned,
		"skipped", stats.FilesSkipped,
		"matches", stats.Matches,
		"unused", len(unused),
		"duration", stats.Duration)

	return UnusedResult{Unused: unused, Stats: stats}, nil
}

// NotImplemented reports lines under codeRoot that contain indication but
// name no known procedure.
func (r *Runner) NotImplemented(ctx context.Context, codeRoot, indication string) (NotImplementedResult, error) {
	if indication == "" {
		return NotImplementedResult{}, fmt.Errorf("indication pattern is empty")
	}
	start := time.Now()

	vocab, files, err := r.prepare(ctx, codeRoot)
	if err != nil {
		return NotImplementedResult{}, err
	}

	scan, err := r.coordinator.Scan(ctx, files, scanner.NewPatternSet([]string{indication}))
	if err != nil {
		return NotImplementedResult{}, fmt.Errorf("scan: %w", err)
	}

	missing := analyzer.NotImplemented(vocab, scan.Records)
	stats := r.stats(vocab, files, scan, start)
	slog.Info("not-implemented sweep complete",
		"indication", indication,
		"procedures", stats.Procedures,
		"files", stats.FilesScanned,
		"skipped", stats.FilesSkipped,
		"call_sites", stats.Matches,
		"not_implemented", len(missing),
		"duration", stats.Duration)

	return NotImplementedResult{Records: missing, Stats: stats}, nil
}

// prepare loads the vocabulary and the file list. Both roots are validated
// here, before any file is scanned.
func (r *Runner) prepare(ctx context.Context, codeRoot string) ([]string, []string, error) {
	vocab, err := r.procedures.Names(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load procedures: %w", err)
	}

	files, err := r.files.Discover(codeRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("discover files: %w", err)
	}
	slog.Debug("sweep prepared", "procedures", len(vocab), "files", len(files), "workers", r.coordinator.Workers())
	return vocab, files, nil
}

func (r *Runner) stats(vocab, files []string, scan scanner.Result, start time.Time) Stats {
	return Stats{
		Procedures:   len(vocab),
		Files:        len(files),
		FilesScanned: scan.FilesScanned,
		FilesSkipped: scan.FilesSkipped,
		Matches:      len(scan.Records),
		Workers:      r.coordinator.Workers(),
		Duration:     time.Since(start),
	}
}
