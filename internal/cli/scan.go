package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/engine"
)

// ScanFlags holds scan command flags
type ScanFlags struct {
	NoCache     bool
	Concurrency int
	ReadLimit   string
	Exclude     []string
	LogFile     string
	LogFormat   string
	LogLevel    string
}

var scanFlags ScanFlags

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Fingerprint a directory and save its cache",
		Long: `Hash every file beneath a directory and store the fingerprints in the
cache file at its root, so later clean runs only rehash changed files.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().BoolVar(&scanFlags.NoCache, "no-cache", false, "ignore cached fingerprints and rehash every file")
	cmd.Flags().IntVarP(&scanFlags.Concurrency, "concurrency", "c", 0, "simultaneous filesystem operations (default: 1)")
	cmd.Flags().StringVar(&scanFlags.ReadLimit, "read-limit", "", "throttle hashing reads (e.g., \"10M\")")
	cmd.Flags().StringSliceVar(&scanFlags.Exclude, "exclude", nil, "glob patterns to exclude")
	addLoggingFlags(cmd, &scanFlags.LogFile, &scanFlags.LogFormat, &scanFlags.LogLevel)

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg, &CleanFlags{
		Concurrency: scanFlags.Concurrency,
		ReadLimit:   scanFlags.ReadLimit,
		Exclude:     scanFlags.Exclude,
		LogFile:     scanFlags.LogFile,
		LogFormat:   scanFlags.LogFormat,
		LogLevel:    scanFlags.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return fmt.Errorf("the fingerprint cache is disabled in the configuration")
	}

	logger, err := createLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	eng, err := newEngine(cfg, nil, logger)
	if err != nil {
		return err
	}

	result, err := eng.Scan(ctx, args[0], engine.Options{
		LoadCache:     !scanFlags.NoCache,
		SaveCache:     true,
		CacheFileName: cfg.Cache.FileName,
		Excludes:      cfg.Exclude,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if !cfg.Output.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Fingerprinted %d files in %s (%d from cache, %d hashed)\n",
			len(result.Snapshot.Files), result.Snapshot.RootPath, result.CacheHits, result.Hashed)
	}
	return nil
}
