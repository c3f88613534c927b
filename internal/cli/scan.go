package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ppiankov/procspectre/internal/analyzer"
	"github.com/ppiankov/procspectre/internal/baseline"
	"github.com/ppiankov/procspectre/internal/discovery"
	"github.com/ppiankov/procspectre/internal/postgres"
	"github.com/ppiankov/procspectre/internal/procedures"
	"github.com/ppiankov/procspectre/internal/reporter"
	"github.com/ppiankov/procspectre/internal/scanner"
	"github.com/ppiankov/procspectre/internal/sweep"
)

type scanOptions struct {
	code           string
	procs          string
	pattern        string
	excludePaths   []string
	excludeExts    []string
	excludeGlobs   []string
	excludeDirs    []string
	schemas        []string
	indication     string
	parallel       int
	format         string
	failOn         string
	baselinePath   string
	updateBaseline string
}

func newScanCmd(info BuildInfo) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report unused stored procedures, or not-implemented call sites with --indication",
		Example: `  procspectre scan --code ./src --procs ./db/procs
  procspectre scan --code ./src --procs ./db/procs --indication ExecDynamic
  procspectre scan --code ./src --db-url postgres://localhost/app --format sarif`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.code == "" {
				return fmt.Errorf("--code is required")
			}
			if opts.procs == "" && dbURL == "" {
				return fmt.Errorf("--procs or --db-url is required")
			}

			// Use config defaults if flags not explicitly set
			if !cmd.Flags().Changed("format") && cfg.Defaults.Format != "" {
				opts.format = cfg.Defaults.Format
			}
			if !cmd.Flags().Changed("parallel") {
				opts.parallel = cfg.Defaults.Workers
			}
			if !cmd.Flags().Changed("indication") {
				opts.indication = cfg.Defaults.Indication
			}
			if opts.pattern == "" {
				opts.pattern = cfg.Definitions.Pattern
			}
			if len(opts.schemas) == 0 {
				opts.schemas = cfg.Catalog.Schemas
			}

			return runScan(cmd, info, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.code, "code", "", "root of the codebase to sweep (required)")
	cmd.Flags().StringVar(&opts.procs, "procs", "", "root of the stored procedure definitions")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "definition file glob under --procs (default **/*.sql)")
	cmd.Flags().StringArrayVar(&opts.excludePaths, "exclude", nil, "skip code paths containing this substring (repeatable)")
	cmd.Flags().StringArrayVar(&opts.excludeExts, "exclude-ext", nil, "skip code files ending with this suffix (repeatable)")
	cmd.Flags().StringArrayVar(&opts.excludeGlobs, "exclude-glob", nil, "skip code files matching this glob, relative to --code (repeatable)")
	cmd.Flags().StringArrayVar(&opts.excludeDirs, "exclude-dir", nil, "never descend into directories with this name (repeatable)")
	cmd.Flags().StringSliceVar(&opts.schemas, "schema", nil, "with --db-url, only read routines from these schemas")
	cmd.Flags().StringVar(&opts.indication, "indication", "", "report lines containing this marker that name no known procedure")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "number of scanner goroutines (0=NumCPU, 1=sequential)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, sarif, or spectrehub")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit 2 if findings match (comma-separated types or severity: high,medium)")
	cmd.Flags().StringVar(&opts.baselinePath, "baseline", "", "path to baseline file (suppress known findings)")
	cmd.Flags().StringVar(&opts.updateBaseline, "update-baseline", "", "save current findings as new baseline")

	return cmd
}

func runScan(cmd *cobra.Command, info BuildInfo, opts *scanOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := discovery.New(discovery.Options{
		Extensions: lo.Uniq(append(append([]string{}, cfg.Exclude.Extensions...), opts.excludeExts...)),
		Paths:      lo.Uniq(append(append([]string{}, cfg.Exclude.Paths...), opts.excludePaths...)),
		Globs:      lo.Uniq(append(append([]string{}, cfg.Exclude.Globs...), opts.excludeGlobs...)),
		Dirs:       lo.Uniq(append(append([]string{}, cfg.Exclude.Dirs...), opts.excludeDirs...)),
	})
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(ctx, opts)
	if err != nil {
		return err
	}
	defer closeSource()

	coordinator := scanner.NewCoordinator(scanner.NewLineMatcher(), opts.parallel)
	runner := sweep.NewRunner(files, source, coordinator)

	var (
		findings []analyzer.Finding
		stats    sweep.Stats
		mode     string
	)
	if opts.indication != "" {
		mode = "not-implemented"
		res, err := runner.NotImplemented(ctx, opts.code, opts.indication)
		if err != nil {
			return err
		}
		findings = analyzer.NotImplementedFindings(res.Records)
		stats = res.Stats
	} else {
		mode = "unused"
		res, err := runner.Unused(ctx, opts.code)
		if err != nil {
			return err
		}
		findings = analyzer.UnusedFindings(res.Unused)
		stats = res.Stats
	}

	// Save baseline before filtering
	if opts.updateBaseline != "" {
		if err := baseline.Save(opts.updateBaseline, findings); err != nil {
			return fmt.Errorf("save baseline: %w", err)
		}
		slog.Info("baseline saved", "path", opts.updateBaseline, "findings", len(findings))
	}

	findings, totalSuppressed, err := filterFindings(findings, opts.baselinePath)
	if err != nil {
		return err
	}

	report := reporter.NewReport("scan", findings, info.Version)
	report.Metadata.Mode = mode
	report.Metadata.CodeRoot = opts.code
	if opts.procs != "" {
		report.Metadata.Source = opts.procs
	} else {
		report.Metadata.Source = "catalog"
		report.Metadata.URIHash = reporter.HashURI(dbURL)
	}
	report.Scanned = reporter.ScanContext{
		Procedures:   stats.Procedures,
		Files:        stats.FilesScanned,
		FilesSkipped: stats.FilesSkipped,
		Matches:      stats.Matches,
		Workers:      stats.Workers,
		Duration:     stats.Duration.String(),
	}
	if totalSuppressed > 0 {
		slog.Info("findings filtered", "total", report.Summary.Total+totalSuppressed, "suppressed", totalSuppressed)
	}

	if err := reporter.Write(cmd.OutOrStdout(), &report, reporter.Format(opts.format)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.failOn != "" && shouldFailOn(findings, opts.failOn) {
		return &ExitError{Code: 2}
	}
	return nil
}

// openSource picks the procedure vocabulary: definition files under --procs,
// or the routine catalog behind --db-url. The returned func releases it.
func openSource(ctx context.Context, opts *scanOptions) (procedures.Source, func(), error) {
	if opts.procs != "" {
		src, err := procedures.NewDirSource(opts.procs, opts.pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("procedure pattern: %w", err)
		}
		return src, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	inspector, err := postgres.NewInspector(connectCtx, postgres.Config{URL: dbURL, Schemas: opts.schemas})
	if err != nil {
		return nil, nil, err
	}
	if ver, err := inspector.ServerVersion(connectCtx); err == nil {
		slog.Info("connected", "version", ver)
	}
	return procedures.NewCatalogSource(inspector), inspector.Close, nil
}
