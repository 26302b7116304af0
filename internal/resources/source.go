package resources

// Source reads resource files relative to a root directory.
// Implementations may read from the embedded home or the filesystem.
type Source interface {
	// ReadFile reads a file by slash-separated path relative to the root.
	// Returns ErrFileNotFound if the file doesn't exist.
	ReadFile(name string) ([]byte, error)

	// Sub returns a Source rooted at dir, relative to this root.
	// Returns ErrPluginNotFound if dir doesn't exist.
	Sub(dir string) (Source, error)

	// Location describes the root for logs and diagnostics.
	Location() string
}

// File names of the manifests.
const (
	HomeManifestFile   = "textpipe.yaml"
	PluginManifestFile = "creole.yaml"
)

// PluginsDir is the directory of a home holding its plugins.
const PluginsDir = "plugins"
