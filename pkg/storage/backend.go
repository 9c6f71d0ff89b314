package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Tree is the post-mutation content of a directory, as seen by the pruner
type Tree struct {
	// Entries are every non-directory entry (files, symlinks, sockets...)
	Entries []string
	// Dirs are every directory beneath the root, root excluded
	Dirs []string
}

// Backend defines the interface for storage operations.
// All paths are slash-separated and relative to the backend root.
type Backend interface {
	// Root returns the absolute root path
	Root() string

	// ListFiles returns every regular file beneath the root, recursively,
	// minus excluded and reserved names
	ListFiles(ctx context.Context) ([]string, error)

	// ListTree returns every entry and directory beneath the root without any filtering
	ListTree(ctx context.Context) (*Tree, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Remove removes a file or an empty directory
	Remove(ctx context.Context, path string) error

	// MoveTo relocates a file to destRoot joined with its relative path
	MoveTo(ctx context.Context, path string, destRoot string) error

	// Close releases any resources held by the backend
	Close() error
}
