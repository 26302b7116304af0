package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemSource serves resources from a home or plugin directory on disk.
type FilesystemSource struct {
	root string // absolute, symlinks resolved
}

// NewFilesystemSource opens dir as a Source. The directory must exist and be
// readable; otherwise the error wraps ErrInvalidBasePath.
func NewFilesystemSource(dir string) (*FilesystemSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	root, err := realPath(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	entries, err := os.ReadDir(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: no such directory: %s", ErrInvalidBasePath, root)
	case err != nil && entries == nil:
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, root)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemSource{root: root}, nil
}

// ReadFile reads a slash-separated path below the root.
func (f *FilesystemSource) ReadFile(name string) ([]byte, error) {
	target, err := f.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target) // #nosec G304 -- resolve keeps target under root
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return data, nil
}

// Sub opens a subdirectory of the root, typically plugins/<name>.
func (f *FilesystemSource) Sub(dir string) (Source, error) {
	target, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, target)
	}
	return NewFilesystemSource(target)
}

// Location returns the root directory.
func (f *FilesystemSource) Location() string {
	return f.root
}

// resolve maps a manifest-relative path to a filesystem path and rejects
// anything that lands outside the root, including through symlinks.
func (f *FilesystemSource) resolve(rel string) (string, error) {
	if err := validateRelPath(rel); err != nil {
		return "", err
	}

	target := filepath.Join(f.root, filepath.FromSlash(rel))
	resolved := target
	if real, err := realPath(target); err == nil {
		resolved = real
	}

	if resolved != f.root && !strings.HasPrefix(resolved, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q leaves %s", ErrPathTraversal, rel, f.root)
	}
	return target, nil
}

// realPath returns the absolute form of p with symlinks evaluated when p
// exists.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if eval, err := filepath.EvalSymlinks(abs); err == nil {
		return eval, nil
	}
	return abs, nil
}

var _ Source = (*FilesystemSource)(nil)
