package scanner

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
)

// fileResult holds the scan result for a single file.
type fileResult struct {
	records  []MatchRecord
	err      error
	filePath string
}

// Coordinator spreads files across a fixed pool of workers and gathers
// every match into a single Result.
type Coordinator struct {
	matcher Matcher
	workers int
}

// NewCoordinator returns a Coordinator using matcher.
// workers<=0 means runtime.NumCPU(). workers=1 is sequential.
func NewCoordinator(matcher Matcher, workers int) *Coordinator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Coordinator{matcher: matcher, workers: workers}
}

// Workers returns the resolved degree of parallelism.
func (c *Coordinator) Workers() int {
	return c.workers
}

// Scan matches patterns against every file exactly once and returns after all
// files are done. Files that vanish or cannot be read are logged and counted as
// skipped; they never abort the scan. If ctx is cancelled, Scan stops handing
// out files and returns ctx.Err() with no result.
func (c *Coordinator) Scan(ctx context.Context, files []string, patterns *PatternSet) (Result, error) {
	if c.workers == 1 || len(files) <= 1 {
		return c.scanSequential(ctx, files, patterns)
	}

	workers := min(c.workers, len(files))

	// Phase 1: queue every file; the closed channel is the work list.
	pathCh := make(chan string, len(files))
	for _, p := range files {
		pathCh <- p
	}
	close(pathCh)

	// Phase 2: fan out to workers
	resultCh := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				if ctx.Err() != nil {
					return
				}
				records, err := c.matcher.MatchFile(path, patterns)
				resultCh <- fileResult{records: records, err: err, filePath: path}
			}
		}()
	}

	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Phase 3: merge results
	var result Result
	for fr := range resultCh {
		result.add(fr)
	}
	return result, nil
}

func (c *Coordinator) scanSequential(ctx context.Context, files []string, patterns *PatternSet) (Result, error) {
	var result Result
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		records, err := c.matcher.MatchFile(path, patterns)
		result.add(fileResult{records: records, err: err, filePath: path})
	}
	return result, nil
}

func (r *Result) add(fr fileResult) {
	if fr.err != nil {
		slog.Warn("skipping file", "path", fr.filePath, "error", fr.err)
		r.FilesSkipped++
		return
	}
	r.Records = append(r.Records, fr.records...)
	r.FilesScanned++
}
