package resources

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed home
var home embed.FS

const embeddedRoot = "home"

// EmbeddedSource reads resources from the embedded home.
// Implements Source interface.
type EmbeddedSource struct {
	root string
}

// NewEmbeddedSource creates an EmbeddedSource rooted at the embedded home.
func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{root: embeddedRoot}
}

// ReadFile reads a file from the embedded home.
func (e *EmbeddedSource) ReadFile(name string) ([]byte, error) {
	if err := validateRelPath(name); err != nil {
		return nil, err
	}

	content, err := home.ReadFile(path.Join(e.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return content, nil
}

// Sub returns the embedded directory dir as a Source.
func (e *EmbeddedSource) Sub(dir string) (Source, error) {
	if err := validateRelPath(dir); err != nil {
		return nil, err
	}

	sub := path.Join(e.root, dir)
	info, err := fs.Stat(home, sub)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, dir)
	}
	return &EmbeddedSource{root: sub}, nil
}

// Location returns "embedded:" followed by the directory inside the home.
func (e *EmbeddedSource) Location() string {
	return "embedded:" + e.root
}

// BuiltinPlugins lists the plugin names shipped in the embedded home.
func BuiltinPlugins() []string {
	entries, err := fs.ReadDir(home, path.Join(embeddedRoot, PluginsDir))
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// Compile-time interface check.
var _ Source = (*EmbeddedSource)(nil)
