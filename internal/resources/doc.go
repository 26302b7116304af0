// Package resources locates resource homes and plugin directories and reads
// their manifests.
//
// # Source Architecture
//
// The package implements a layered loading system:
//
//	Source (interface)
//	    │
//	    ├── EmbeddedSource    - reads from the go:embed home (built-in plugins)
//	    ├── FilesystemSource  - reads from a directory on disk
//	    └── Resolver          - maps plugin URIs to sources, home first
//
// EmbeddedSource provides the built-in home and its plugins (annie), compiled
// into the binary.
//
// FilesystemSource reads a user-provided home or plugin directory, with path
// traversal protection and symlink resolution.
//
// Resolver turns the URI given to plugin registration into a Source. Relative
// names are looked up under the resource home first, then among the built-in
// plugins. This allows a home to override a built-in plugin by name.
//
// # Directory Structure
//
//	{home}/
//	├── textpipe.yaml                 # home manifest
//	└── plugins/
//	    └── {name}/
//	        ├── creole.yaml           # plugin manifest
//	        └── gazetteer/
//	            └── {list}.lst        # one phrase per line
//
// # Security
//
// Plugin names are validated to prevent path traversal attacks.
// FilesystemSource resolves symlinks and verifies paths stay within its root.
package resources
