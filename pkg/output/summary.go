package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// PrintSummary writes the end-of-run summary
func PrintSummary(w io.Writer, report *models.RunReport) {
	heading := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	fmt.Fprintf(w, "\n")
	heading.Fprintf(w, "Run %s completed in %s\n", report.ID, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Source:           %d files\n", report.Stats.SourceFiles)
	fmt.Fprintf(w, "    Targets:          %d files\n", report.Stats.TargetFiles)
	fmt.Fprintf(w, "    Cache hits:       %d\n", report.Stats.CacheHits)
	fmt.Fprintf(w, "    Hashed:           %d\n", report.Stats.FilesHashed)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Plan:\n")
	fmt.Fprintf(w, "    Duplicates:       %d (%s)\n", report.Stats.FilesPlanned, formatBytes(report.Stats.BytesReclaimed))
	fmt.Fprintf(w, "    Mode:             %s\n", report.Mode)
	if report.Mode.Mutates() {
		fmt.Fprintf(w, "    Files %-11s %d\n", pastTense(report.Mode)+":", report.Stats.FilesAffected)
		fmt.Fprintf(w, "    Dirs pruned:      %d\n", report.Stats.DirsPruned)
	}
	fmt.Fprintf(w, "\n")

	status := ok
	switch {
	case report.Status == models.StatusFailed:
		status = bad
	case report.Status == models.StatusCancelled, len(report.Errors) > 0:
		status = warn
	}
	status.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		bad.Fprintf(w, "\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s %s: %s\n", e.Operation, e.Path, e.Error)
		}
	}
}

func pastTense(mode models.ExecutionMode) string {
	if mode.Kind == models.ModeMove {
		return "moved"
	}
	return "deleted"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
