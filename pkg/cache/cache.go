// Package cache persists per-directory content fingerprints so unchanged
// files are not re-hashed between runs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
)

const (
	// SchemaVersion is written to every cache file; any other value invalidates the file
	SchemaVersion = "1.0.0"

	// DefaultFileName is the cache file co-located at each directory root
	DefaultFileName = "delete-files-info-cache.json"

	tempSuffix = ".tmp"
)

// Entries maps a slash-separated relative path to its cached fingerprint
type Entries map[string]models.CacheEntry

// document is the on-disk representation
type document struct {
	Version string      `json:"version"`
	Files   []fileEntry `json:"files"`
}

type fileEntry struct {
	RelativePath string  `json:"relativePath"`
	Hash         string  `json:"hash"`
	MtimeMs      float64 `json:"mtimeMs"`
	Size         int64   `json:"size"`
}

// Store loads and saves cache files named fileName inside directory roots
type Store struct {
	fileName string
	logger   logging.Logger
}

// NewStore creates a cache store. An empty fileName selects DefaultFileName.
func NewStore(fileName string, logger logging.Logger) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{fileName: fileName, logger: logging.OrNull(logger)}
}

// FileNames returns the base names the store writes, so enumeration can skip them
func (s *Store) FileNames() []string {
	return []string{s.fileName, s.fileName + tempSuffix}
}

// Path returns the cache file path for a directory root
func (s *Store) Path(root string) string {
	return filepath.Join(root, s.fileName)
}

// Load reads the cache for root. It never fails: a missing, unreadable,
// malformed or version-mismatched file yields an empty set of entries.
func (s *Store) Load(ctx context.Context, root string) Entries {
	path := s.Path(root)
	entries := make(Entries)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug(ctx, "Ignoring unreadable cache", logging.Fields{"path": path, "error": err.Error()})
		}
		return entries
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Debug(ctx, "Ignoring malformed cache", logging.Fields{"path": path, "error": err.Error()})
		return entries
	}

	if doc.Version != SchemaVersion {
		s.logger.Debug(ctx, "Ignoring cache with different schema version", logging.Fields{
			"path":     path,
			"version":  doc.Version,
			"expected": SchemaVersion,
		})
		return entries
	}

	for _, f := range doc.Files {
		if f.RelativePath == "" || f.Hash == "" {
			continue
		}
		entries[f.RelativePath] = models.CacheEntry{
			Hash:               f.Hash,
			Size:               f.Size,
			ModifiedTimeMillis: f.MtimeMs,
		}
	}

	return entries
}

// Save persists the snapshot as the new cache for its root.
// The previous cache stays intact until the new one is complete.
func (s *Store) Save(ctx context.Context, snapshot *models.DirectorySnapshot) error {
	doc := document{
		Version: SchemaVersion,
		Files:   make([]fileEntry, 0, len(snapshot.Files)),
	}
	for _, f := range snapshot.Files {
		doc.Files = append(doc.Files, fileEntry{
			RelativePath: f.RelativePath,
			Hash:         f.Hash,
			MtimeMs:      f.ModifiedTimeMillis,
			Size:         f.Size,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	path := s.Path(snapshot.RootPath)
	tmpPath := path + tempSuffix
	if err := writeSynced(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize cache file: %w", err)
	}

	s.logger.Debug(ctx, "Saved fingerprint cache", logging.Fields{"path": path, "files": len(doc.Files)})
	return nil
}

// Clear removes the cache file for root
func (s *Store) Clear(root string) error {
	err := os.Remove(s.Path(root))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
