package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// DefaultReportFile is written to the working directory after planning
const DefaultReportFile = "delete-files.txt"

// WriteReport writes the plan report to path.
// Format can be "human" or "json".
func WriteReport(report *models.RunReport, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	switch format {
	case "json":
		err = writeReportJSON(report, file)
	default: // "human"
		err = writeReportHuman(report, file)
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// writeReportHuman writes the plan in human-readable format
func writeReportHuman(report *models.RunReport, w io.Writer) error {
	verb := report.Mode.Verb()

	fmt.Fprintf(w, "Found %d files in source directory %q\n", report.Stats.SourceFiles, report.SourcePath)
	fmt.Fprintf(w, "Found %d files in target directories\n", report.Stats.TargetFiles)
	for _, target := range report.TargetPaths {
		fmt.Fprintf(w, "    %s\n", target)
	}
	fmt.Fprintf(w, "Will %s %d duplicate files.\n", verb, len(report.Actions))
	if report.Mode.Kind == models.ModeMove {
		fmt.Fprintf(w, "Destination: %s\n", report.Mode.Destination)
	}
	if !report.Mode.Mutates() {
		fmt.Fprintf(w, "(this is a dry run -- no changes will be made)\n")
	}

	fmt.Fprintf(w, "\nFile List:\n")
	for _, action := range report.Actions {
		fmt.Fprintf(w, "    %s\n", action.SourceFile.AbsolutePath)
		fmt.Fprintf(w, "        Duplicates:\n")
		for _, dup := range action.Duplicates {
			fmt.Fprintf(w, "            %s\n", dup)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// writeReportJSON writes the plan in JSON format
func writeReportJSON(report *models.RunReport, w io.Writer) error {
	actions := report.Actions
	if actions == nil {
		actions = []models.DeleteAction{}
	}

	out := struct {
		Generated   string                `json:"generated"`
		RunID       string                `json:"run_id"`
		SourcePath  string                `json:"source_path"`
		TargetPaths []string              `json:"target_paths"`
		Mode        string                `json:"mode"`
		Destination string                `json:"destination,omitempty"`
		DryRun      bool                  `json:"dry_run"`
		SourceFiles int                   `json:"source_files"`
		TargetFiles int                   `json:"target_files"`
		TotalCount  int                   `json:"total_count"`
		Actions     []models.DeleteAction `json:"actions"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		RunID:       report.ID,
		SourcePath:  report.SourcePath,
		TargetPaths: report.TargetPaths,
		Mode:        string(report.Mode.Kind),
		Destination: report.Mode.Destination,
		DryRun:      !report.Mode.Mutates(),
		SourceFiles: report.Stats.SourceFiles,
		TargetFiles: report.Stats.TargetFiles,
		TotalCount:  len(actions),
		Actions:     actions,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
