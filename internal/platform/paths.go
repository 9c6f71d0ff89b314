package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

const windows = "windows"

// reservedChars may not appear in a Windows path outside a UNC prefix
const reservedChars = `<>"|?*`

// NormalizeRoot resolves a directory argument to an absolute, cleaned path.
// A leading UNC prefix survives cleaning on Windows.
func NormalizeRoot(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}

	cleaned := filepath.Clean(abs)
	if isUNC(path) && !isUNC(cleaned) {
		cleaned = `\\` + strings.TrimLeft(cleaned, `\`)
	}
	return cleaned, nil
}

// IsWithin reports whether path equals root or lies beneath it.
// Both arguments must already be normalized.
func IsWithin(path, root string) bool {
	if runtime.GOOS == windows {
		path, root = strings.ToLower(path), strings.ToLower(root)
	}
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

// ValidatePath rejects empty paths and, on Windows, reserved characters
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}
	if runtime.GOOS != windows || isUNC(path) {
		return nil
	}
	if i := strings.IndexAny(path, reservedChars); i >= 0 {
		return &PathError{Path: path, Message: "path contains invalid character: " + string(path[i])}
	}
	return nil
}

func isUNC(path string) bool {
	return runtime.GOOS == windows && (strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//"))
}

// PathError reports a directory argument that cannot be used
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path '%s': %s", e.Path, e.Message)
}
