package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
	excludes []string
	reserved map[string]bool
	ignored  map[string]bool
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{
		rootPath: absPath,
		reserved: make(map[string]bool),
		ignored:  make(map[string]bool),
	}, nil
}

// SetExcludes sets doublestar patterns matched against relative paths.
// A pattern without a slash also matches any single path component.
func (l *Local) SetExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}
	l.excludes = patterns
	return nil
}

// Reserve hides files with the given base names from ListFiles at any depth
func (l *Local) Reserve(names ...string) {
	for _, n := range names {
		l.reserved[n] = true
	}
}

// Ignore hides the files at the given absolute paths from ListFiles.
// Paths outside the root are skipped.
func (l *Local) Ignore(paths ...string) {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := l.rel(abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		l.ignored[rel] = true
	}
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// ListFiles returns all regular files beneath the root
func (l *Local) ListFiles(ctx context.Context) ([]string, error) {
	var files []string

	err := filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == l.rootPath {
			return nil
		}

		rel, err := l.rel(p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if l.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || l.reserved[d.Name()] || l.ignored[rel] || l.excluded(rel, false) {
			return nil
		}

		files = append(files, rel)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// ListTree returns every entry beneath the root
func (l *Local) ListTree(ctx context.Context) (*Tree, error) {
	tree := &Tree{}

	err := filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == l.rootPath {
			return nil
		}

		rel, err := l.rel(p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			tree.Dirs = append(tree.Dirs, rel)
		} else {
			tree.Entries = append(tree.Entries, rel)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list tree: %w", err)
	}

	return tree, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.abs(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.abs(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:         fullPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Permissions:  uint32(info.Mode().Perm()),
		RelativePath: filepath.ToSlash(path),
	}, nil
}

// Remove removes a file or an empty directory. Non-empty directories are never removed.
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := os.Remove(l.abs(path)); err != nil {
		return fmt.Errorf("failed to remove: %w", err)
	}
	return nil
}

// MoveTo relocates a file beneath destRoot, preserving its relative path.
// An existing file at the destination is never overwritten.
func (l *Local) MoveTo(ctx context.Context, path string, destRoot string) error {
	src := l.abs(path)
	dst := filepath.Join(destRoot, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination already exists: %s: %w", dst, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check destination: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move file: %w", err)
	}

	// Different filesystems: copy then remove the original
	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy file across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove original after copy: %w", err)
	}
	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func (l *Local) abs(rel string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(rel))
}

func (l *Local) rel(p string) (string, error) {
	rel, err := filepath.Rel(l.rootPath, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// excluded checks a slash-separated relative path against the exclude patterns
func (l *Local) excluded(rel string, isDir bool) bool {
	base := path.Base(rel)
	for _, pattern := range l.excludes {
		if pattern == "" {
			continue
		}

		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")
		if dirOnly && !isDir {
			continue
		}

		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if written != info.Size() {
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", info.Size(), written)
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
