package resources

import "errors"

// Sentinel errors for resource operations.
var (
	// ErrManifestNotFound indicates the home or plugin manifest does not exist.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrManifestParse indicates the manifest is not valid YAML or has unknown fields.
	ErrManifestParse = errors.New("failed to parse manifest")

	// ErrInvalidManifest indicates the manifest parsed but its content is invalid.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrPluginNotFound indicates the requested plugin directory does not exist.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrFileNotFound indicates a file referenced by a manifest does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidName indicates a plugin name contains path separators or traversal.
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrUnsupportedURI indicates a plugin URI with an unknown scheme.
	ErrUnsupportedURI = errors.New("unsupported plugin URI")

	// ErrRead indicates an I/O error occurred while reading a resource file.
	ErrRead = errors.New("failed to read resource")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
