package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ppiankov/procspectre/internal/analyzer"
	"github.com/ppiankov/procspectre/internal/baseline"
	"github.com/ppiankov/procspectre/internal/config"
	"github.com/ppiankov/procspectre/internal/logging"
	"github.com/ppiankov/procspectre/internal/suppress"
)

// EnvDBURL overrides db_url from the config file.
const EnvDBURL = "PROCSPECTRE_DB_URL"

var (
	dbURL     string
	verbose   bool
	logFormat string
	cfg       config.Config
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ExitError asks main to exit with Code without printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func newRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "procspectre",
		Short:         "Stored procedure dead-code scanner",
		Long:          "Sweeps a codebase for references to stored procedures and reports procedures nothing calls, or dynamic call sites that name no known procedure.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose, logFormat, cmd.ErrOrStderr())

			if err := godotenv.Load(); err == nil {
				slog.Debug("loaded .env")
			}

			cwd, err := os.Getwd()
			if err != nil {
				cwd = "."
			}
			cfg, err = config.Load(cwd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			slog.Debug("config loaded", "path", cwd, "found", config.Exists(cwd))

			// Flag wins over env, env wins over config file
			if dbURL == "" {
				if envURL := os.Getenv(EnvDBURL); envURL != "" {
					dbURL = envURL
				} else if cfg.DBURL != "" {
					dbURL = cfg.DBURL
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL URL to read procedure names from (or set "+EnvDBURL+")")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format on stderr: text or json")

	root.AddCommand(newVersionCmd(info))
	root.AddCommand(newScanCmd(info))

	return root
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "procspectre %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
		},
	}
}

// filterFindings applies baseline and suppression rules to findings.
func filterFindings(findings []analyzer.Finding, baselinePath string) ([]analyzer.Finding, int, error) {
	totalSuppressed := 0

	if baselinePath != "" {
		bl, err := baseline.Load(baselinePath)
		if err != nil {
			return nil, 0, fmt.Errorf("load baseline: %w", err)
		}
		var n int
		findings, n = bl.Filter(findings)
		totalSuppressed += n
	}

	// .procspectre-ignore.yml + config exclude.findings + inline markers
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	rules, err := suppress.LoadRules(cwd)
	if err != nil {
		return nil, 0, fmt.Errorf("load suppress rules: %w", err)
	}
	rules.WithConfigFindings(cfg.Exclude.Findings)

	var n int
	findings, n = rules.Filter(findings)
	totalSuppressed += n

	return findings, totalSuppressed, nil
}

// shouldFailOn returns true if any finding matches the fail-on criteria.
// Criteria can be finding types (UNUSED_PROCEDURE) or severity levels (high, medium).
func shouldFailOn(findings []analyzer.Finding, failOn string) bool {
	parts := strings.Split(failOn, ",")
	types := make(map[string]bool)
	severities := make(map[string]bool)

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lower := strings.ToLower(p)
		switch lower {
		case "high", "medium", "low", "info":
			severities[lower] = true
		default:
			types[strings.ToUpper(p)] = true
		}
	}

	for _, f := range findings {
		if types[string(f.Type)] {
			return true
		}
		if severities[string(f.Severity)] {
			return true
		}
	}
	return false
}

// Execute runs the root command.
func Execute(version, commit, date string) error {
	return newRootCmd(BuildInfo{Version: version, Commit: commit, Date: date}).Execute()
}
