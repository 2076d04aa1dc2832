package platform

import (
	"path"
	"path/filepath"
	"strings"
)

// CleanRelative normalizes a slash-separated path relative to a comparison
// root. It rejects empty and absolute paths and any path that would escape
// the root.
func CleanRelative(p string) (string, error) {
	if p == "" {
		return "", &PathError{Path: p, Message: "path is empty"}
	}
	if strings.ContainsRune(p, 0) {
		return "", &PathError{Path: p, Message: "path contains a NUL byte"}
	}

	slashed := filepath.ToSlash(p)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", &PathError{Path: p, Message: "path must be relative"}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", &PathError{Path: p, Message: "path names the root"}
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &PathError{Path: p, Message: "path escapes the root"}
	}

	return cleaned, nil
}

// Join resolves a cleaned relative path under root using the platform separator
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
