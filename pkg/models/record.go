package models

import (
	"path"
	"path/filepath"
	"time"
)

// FileRecord describes one regular file inside a directory snapshot
type FileRecord struct {
	// RelativePath is slash-separated and relative to the owning root.
	// It is unique within a snapshot.
	RelativePath string `json:"relativePath"`

	// AbsolutePath is the root joined with RelativePath
	AbsolutePath string `json:"path"`

	// Hash is the hex encoded content digest
	Hash string `json:"hash"`

	// ModifiedTimeMillis and Size are only used to validate cache freshness
	ModifiedTimeMillis float64 `json:"mtimeMs"`
	Size               int64   `json:"size"`
}

// NewFileRecord creates a record for relativePath under root with no hash yet
func NewFileRecord(root, relativePath string) FileRecord {
	rel := filepath.ToSlash(relativePath)
	return FileRecord{
		RelativePath: rel,
		AbsolutePath: filepath.Join(root, filepath.FromSlash(rel)),
	}
}

// Dir returns the slash-separated directory part of the relative path ("." at the root)
func (r FileRecord) Dir() string {
	return path.Dir(r.RelativePath)
}

// DirectorySnapshot is the fingerprinted state of one directory tree
type DirectorySnapshot struct {
	RootPath string
	Files    []FileRecord
}

// Lookup returns the record with the given relative path
func (s *DirectorySnapshot) Lookup(relativePath string) (FileRecord, bool) {
	for _, f := range s.Files {
		if f.RelativePath == relativePath {
			return f, true
		}
	}
	return FileRecord{}, false
}

// TotalBytes sums the size of every file in the snapshot
func (s *DirectorySnapshot) TotalBytes() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// CacheEntry is the persisted fingerprint of a single file
type CacheEntry struct {
	Hash               string
	Size               int64
	ModifiedTimeMillis float64
}

// Matches reports whether the entry can be reused for a file with the given metadata.
// Only size and modification time are checked; a rewrite that keeps both is not detected.
func (e CacheEntry) Matches(size int64, modTimeMillis float64) bool {
	return e.Size == size && e.ModifiedTimeMillis == modTimeMillis
}

// ToMillis converts a modification time to the millisecond value stored in caches
func ToMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}
