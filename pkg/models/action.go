package models

import "fmt"

// DeleteAction marks a source file whose content already exists in a target
type DeleteAction struct {
	SourceFile FileRecord `json:"sourceFile"`
	// Duplicates holds the absolute paths of matching target files, in target order
	Duplicates []string `json:"duplicates"`
}

// ModeKind selects what the executor does with planned files
type ModeKind string

const (
	// ModeDryRun reports the plan without touching the filesystem
	ModeDryRun ModeKind = "dry-run"
	// ModeDelete removes duplicate source files
	ModeDelete ModeKind = "delete"
	// ModeMove relocates duplicate source files under a destination root
	ModeMove ModeKind = "move"
)

// ExecutionMode is the executor's mode plus the move destination when relevant
type ExecutionMode struct {
	Kind        ModeKind
	Destination string
}

// DryRun returns the dry-run mode
func DryRun() ExecutionMode { return ExecutionMode{Kind: ModeDryRun} }

// Delete returns the delete mode
func Delete() ExecutionMode { return ExecutionMode{Kind: ModeDelete} }

// MoveTo returns the move mode rooted at destination
func MoveTo(destination string) ExecutionMode {
	return ExecutionMode{Kind: ModeMove, Destination: destination}
}

// Mutates reports whether the mode changes the filesystem
func (m ExecutionMode) Mutates() bool {
	return m.Kind != ModeDryRun
}

// Verb is the word used in reports and prompts
func (m ExecutionMode) Verb() string {
	switch m.Kind {
	case ModeMove:
		return "move"
	default:
		return "delete"
	}
}

// Validate checks the mode is well formed
func (m ExecutionMode) Validate() error {
	switch m.Kind {
	case ModeDryRun, ModeDelete:
		return nil
	case ModeMove:
		if m.Destination == "" {
			return &ValidationError{Field: "Destination", Message: "move mode requires a destination"}
		}
		return nil
	default:
		return &ValidationError{Field: "Kind", Message: fmt.Sprintf("unknown mode %q", m.Kind)}
	}
}

func (m ExecutionMode) String() string {
	if m.Kind == ModeMove {
		return fmt.Sprintf("move to %s", m.Destination)
	}
	return string(m.Kind)
}
