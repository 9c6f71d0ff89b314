package engine

import (
	"fmt"
	"os"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// Options describes one deduplication run
type Options struct {
	SourcePath  string
	TargetPaths []string
	Mode        models.ExecutionMode

	// LoadCache reuses cached digests; SaveCache persists fresh snapshots
	LoadCache     bool
	SaveCache     bool
	CacheFileName string

	// Excludes are doublestar patterns matched against relative paths
	Excludes []string

	// ReportFile is skipped when empty. It is never enumerated, even when it
	// lies inside the source or a target.
	ReportFile   string
	ReportFormat string

	// RehashVerify re-reads planned files before execution
	RehashVerify bool
}

// Validate normalizes paths in place and checks the run can start
func (o *Options) Validate() error {
	if o.SourcePath == "" {
		return &models.ValidationError{Field: "source", Message: "source directory is required"}
	}
	if len(o.TargetPaths) == 0 {
		return &models.ValidationError{Field: "target", Message: "at least one target directory is required"}
	}
	if err := o.Mode.Validate(); err != nil {
		return err
	}

	source, err := existingDir("source", o.SourcePath)
	if err != nil {
		return err
	}
	o.SourcePath = source

	o.TargetPaths = append([]string(nil), o.TargetPaths...)
	for i, target := range o.TargetPaths {
		normalized, err := existingDir("target", target)
		if err != nil {
			return err
		}
		if normalized == source {
			return &models.ValidationError{Field: "target", Message: fmt.Sprintf("target %s is the source directory", target)}
		}
		o.TargetPaths[i] = normalized
	}

	if o.Mode.Kind == models.ModeMove {
		dest, err := platform.NormalizeRoot(o.Mode.Destination)
		if err != nil {
			return &models.ValidationError{Field: "move-to", Message: err.Error()}
		}
		if platform.IsWithin(dest, source) {
			return &models.ValidationError{Field: "move-to", Message: "destination must not be inside the source directory"}
		}
		o.Mode.Destination = dest
	}

	return nil
}

func existingDir(field, path string) (string, error) {
	normalized, err := platform.NormalizeRoot(path)
	if err != nil {
		return "", &models.ValidationError{Field: field, Message: err.Error()}
	}
	info, err := os.Stat(normalized)
	if err != nil {
		return "", &models.ValidationError{Field: field, Message: fmt.Sprintf("cannot access %s: %v", path, err)}
	}
	if !info.IsDir() {
		return "", &models.ValidationError{Field: field, Message: fmt.Sprintf("%s is not a directory", path)}
	}
	return normalized, nil
}
