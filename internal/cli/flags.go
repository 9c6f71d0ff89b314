package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dupnorris/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log progress details to stderr",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress progress bars and the summary",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// CleanFlags holds clean command flags
type CleanFlags struct {
	Targets      []string
	MoveTo       string
	Dry          bool
	Silent       bool
	NoCache      bool
	Yes          bool
	Concurrency  int
	ReadLimit    string
	RehashVerify bool
	ReportFile   string
	ReportFormat string
	Exclude      []string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// addLoggingFlags registers the logging flags shared by commands that run the engine
func addLoggingFlags(cmd *cobra.Command, file, format, level *string) {
	cmd.Flags().StringVar(file, "log-file", "", "write logs to file (rotated at 10MB)")
	cmd.Flags().StringVar(format, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(level, "log-level", "", "log level: debug, info, warn, error")
}
