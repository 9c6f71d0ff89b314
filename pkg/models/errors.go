package models

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines the confirmation prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// FileError records a failed operation on a single path
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
