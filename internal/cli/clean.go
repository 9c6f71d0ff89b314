package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/engine"
	"github.com/sdejongh/dupnorris/pkg/executor"
	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/ratelimit"
)

var cleanFlags CleanFlags

// NewCleanCommand creates the clean command
func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <source>",
		Short: "Remove source files already present in target directories",
		Long: `Fingerprint the source and target directories, then delete (or move away)
every source file whose content already exists in a target. Directories left
empty in the source are removed afterwards. Targets are never modified.

A plan is written to delete-files.txt before anything is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}

	cmd.Flags().StringArrayVarP(&cleanFlags.Targets, "target", "t", nil, "target directory holding the canonical copies (repeatable, required)")
	cmd.MarkFlagRequired("target")

	cmd.Flags().StringVar(&cleanFlags.MoveTo, "move-to", "", "move duplicates under this directory instead of deleting them")
	cmd.Flags().BoolVar(&cleanFlags.Dry, "dry", false, "write the plan only, change nothing")
	cmd.Flags().BoolVar(&cleanFlags.Silent, "silent", false, "no prompt, no progress, no logs")
	cmd.Flags().BoolVar(&cleanFlags.NoCache, "no-cache", false, "ignore cached fingerprints and rehash every file")
	cmd.Flags().BoolVarP(&cleanFlags.Yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().IntVarP(&cleanFlags.Concurrency, "concurrency", "c", 0, "simultaneous filesystem operations (default: 1)")
	cmd.Flags().StringVar(&cleanFlags.ReadLimit, "read-limit", "", "throttle hashing reads (e.g., \"10M\")")
	cmd.Flags().BoolVar(&cleanFlags.RehashVerify, "rehash-verify", false, "re-read planned files before changing anything")
	cmd.Flags().StringVar(&cleanFlags.ReportFile, "report-file", "", "plan report path (default: delete-files.txt)")
	cmd.Flags().StringVar(&cleanFlags.ReportFormat, "report-format", "", "plan report format: human, json")
	cmd.Flags().StringSliceVar(&cleanFlags.Exclude, "exclude", nil, "glob patterns to exclude")

	addLoggingFlags(cmd, &cleanFlags.LogFile, &cleanFlags.LogFormat, &cleanFlags.LogLevel)

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateCleanFlags(&cleanFlags); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg, &cleanFlags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := createLogger(cfg, cleanFlags.Silent)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	eng, err := newEngine(cfg, confirmerFor(&cleanFlags), logger)
	if err != nil {
		return err
	}

	opts := buildOptions(cfg, &cleanFlags, args[0])
	report, err := eng.Run(ctx, opts)

	out := cmd.OutOrStdout()
	if errors.Is(err, models.ErrCancelled) {
		if !cleanFlags.Silent {
			fmt.Fprintln(out, "Cancelled, nothing was changed.")
		}
		return &ExitError{Code: report.Status.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	if !cfg.Output.Quiet {
		if opts.ReportFile != "" {
			fmt.Fprintf(out, "Plan written to %s\n", opts.ReportFile)
		}
		output.PrintSummary(out, report)
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// newEngine wires the shared gate, hasher, progress observer and logger
func newEngine(cfg *config.Config, confirmer executor.Confirmer, logger logging.Logger) (*engine.Engine, error) {
	rate, err := cfg.ReadLimitBytes()
	if err != nil {
		return nil, err
	}

	hasher := fingerprint.NewHasher(cfg.Performance.BufferSize, ratelimit.NewLimiter(rate))

	var observer output.Observer
	if cfg.Output.Progress && term.IsTerminal(int(os.Stderr.Fd())) {
		observer = output.NewBarObserver(os.Stderr)
	}

	return engine.NewEngine(gate.New(cfg.Performance.Concurrency), hasher, confirmer, observer, logger), nil
}

// confirmerFor returns nil when the run must not prompt
func confirmerFor(flags *CleanFlags) executor.Confirmer {
	if flags.Dry || flags.Silent || flags.Yes {
		return nil
	}
	return NewTerminalConfirmer(os.Stdin, os.Stderr)
}

// createLogger creates a logger based on configuration.
// Without a log file, only warnings reach stderr unless --verbose is set.
func createLogger(cfg *config.Config, silent bool) (logging.Logger, error) {
	if silent {
		return logging.Discard, nil
	}

	format := logging.ParseFormat(cfg.Logging.Format)
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File != "" {
		return logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
	}

	if !globalFlags.Verbose && level < logging.WarnLevel {
		level = logging.WarnLevel
	}
	return logging.NewWriterLogger(stderr, format, level), nil
}

// stderr is replaced in tests
var stderr io.Writer = os.Stderr

// ExitError carries a non-zero process exit code without an error message
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
