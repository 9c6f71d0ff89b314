package cli

import (
	"fmt"

	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/engine"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// validateCleanFlags checks flag combinations the engine cannot see
func validateCleanFlags(flags *CleanFlags) error {
	if len(flags.Targets) == 0 {
		return &models.ValidationError{Field: "target", Message: "at least one --target is required"}
	}
	if flags.Concurrency < 0 {
		return &models.ValidationError{Field: "concurrency", Message: "must be at least 1"}
	}
	if flags.ReportFormat != "" && flags.ReportFormat != "human" && flags.ReportFormat != "json" {
		return &models.ValidationError{Field: "report-format", Message: fmt.Sprintf("invalid format %q (valid: human, json)", flags.ReportFormat)}
	}
	return nil
}

// loadConfig loads configuration from --config or the default location
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.Resolve(globalFlags.ConfigFile)
	return cfg, err
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, flags *CleanFlags) {
	if flags.Concurrency > 0 {
		cfg.Performance.Concurrency = flags.Concurrency
	}

	if flags.ReadLimit != "" {
		cfg.Performance.ReadLimit = flags.ReadLimit
	}

	if len(flags.Exclude) > 0 {
		cfg.Exclude = flags.Exclude
	}

	if flags.ReportFile != "" {
		cfg.Output.ReportFile = flags.ReportFile
	}
	if flags.ReportFormat != "" {
		cfg.Output.ReportFormat = flags.ReportFormat
	}

	if flags.LogFile != "" {
		cfg.Logging.File = flags.LogFile
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}

	// Silent implies no progress and no summary
	if globalFlags.Quiet || flags.Silent {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// executionMode maps --dry and --move-to to a mode. A dry run wins.
func executionMode(flags *CleanFlags) models.ExecutionMode {
	switch {
	case flags.Dry:
		return models.DryRun()
	case flags.MoveTo != "":
		return models.MoveTo(flags.MoveTo)
	default:
		return models.Delete()
	}
}

// buildOptions creates the engine options for one run
func buildOptions(cfg *config.Config, flags *CleanFlags, source string) engine.Options {
	return engine.Options{
		SourcePath:    source,
		TargetPaths:   flags.Targets,
		Mode:          executionMode(flags),
		LoadCache:     cfg.Cache.Enabled && !flags.NoCache,
		SaveCache:     cfg.Cache.Enabled,
		CacheFileName: cfg.Cache.FileName,
		Excludes:      cfg.Exclude,
		ReportFile:    cfg.Output.ReportFile,
		ReportFormat:  cfg.Output.ReportFormat,
		RehashVerify:  flags.RehashVerify,
	}
}
