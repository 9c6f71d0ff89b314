package models

import (
	"time"
)

// RunReport represents the results of a deduplication run
type RunReport struct {
	// Run details
	ID          string
	SourcePath  string
	TargetPaths []string
	Mode        ExecutionMode

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats   Statistics
	Actions []DeleteAction

	// Errors holds per-file failures that did not stop the run
	Errors []RunError

	Status RunStatus
}

// Statistics holds run metrics
type Statistics struct {
	SourceFiles    int
	TargetFiles    int
	CacheHits      int
	FilesHashed    int
	FilesPlanned   int
	FilesAffected  int
	BytesReclaimed int64
	DirsPruned     int
}

// RunError represents a non-fatal error during a run
type RunError struct {
	Path      string
	Operation string
	Error     string
	Timestamp time.Time
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess RunStatus = "success"
	// StatusFailed indicates the run failed
	StatusFailed RunStatus = "failed"
	// StatusCancelled indicates the user declined the confirmation prompt
	StatusCancelled RunStatus = "cancelled"
)

// ExitCode returns the process exit code for the status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// AddError records a per-file failure. Failures on individual files are
// best-effort and leave the run status untouched.
func (r *RunReport) AddError(fe *FileError) {
	r.Errors = append(r.Errors, RunError{
		Path:      fe.Path,
		Operation: fe.Op,
		Error:     fe.Err.Error(),
		Timestamp: time.Now(),
	})
}
