package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the dupnorris command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dupnorris",
		Short: "Remove files that already exist in a backup",
		Long: `dupnorris compares a source directory against one or more target
directories by content and removes, or moves aside, every source file that
already has a copy in a target. Fingerprints are cached next to each
directory so repeated runs only rehash what changed.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// ExitCode maps an error returned by the command tree to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 2
}
