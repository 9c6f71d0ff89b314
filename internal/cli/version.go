package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/cache"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, build and cache format information.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, Version)
				return
			}

			fmt.Fprintf(out, "dupnorris %s\n", Version)
			fmt.Fprintf(out, "  Commit:       %s\n", Commit)
			fmt.Fprintf(out, "  Built:        %s\n", BuildDate)
			fmt.Fprintf(out, "  Cache schema: %s\n", cache.SchemaVersion)
			fmt.Fprintf(out, "  Go version:   %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
