package resources

import (
	"fmt"
	"path"
	"strings"
)

// ValidateName checks that a plugin name is safe for use as a directory name.
// Returns ErrInvalidName if the name is empty or contains path separators,
// dots (which could allow traversal), or whitespace.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\. \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// validateRelPath checks that a manifest-relative path stays inside its root.
func validateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrPathTraversal)
	}
	if strings.Contains(p, "\\") || path.IsAbs(p) {
		return fmt.Errorf("%w: %q", ErrPathTraversal, p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q", ErrPathTraversal, p)
	}
	return nil
}
