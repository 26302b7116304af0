package resources

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-textpipe/internal/fileutil"
)

// URI schemes accepted by Resolve.
const (
	SchemeBuiltin = "builtin:"
	SchemeFile    = "file://"
)

// Resolver maps plugin URIs to sources.
// Relative names are tried under the home first, then among built-in plugins,
// then relative to the working directory.
type Resolver struct {
	home     Source
	builtins Source
}

// NewResolver creates a Resolver for the given home. A nil home resolves
// built-in and absolute URIs only.
func NewResolver(home Source) (*Resolver, error) {
	builtins, err := NewEmbeddedSource().Sub(PluginsDir)
	if err != nil {
		return nil, err
	}
	return &Resolver{home: home, builtins: builtins}, nil
}

// Resolve returns the plugin directory named by uri. Accepted forms:
//
//	builtin:annie            built-in plugin
//	file:///opt/plugins/x    absolute directory
//	/opt/plugins/x           absolute directory
//	plugins/x or x           relative to the home, then built-in, then cwd
func (r *Resolver) Resolve(uri string) (Source, error) {
	switch {
	case uri == "":
		return nil, fmt.Errorf("%w: empty URI", ErrUnsupportedURI)

	case strings.HasPrefix(uri, SchemeBuiltin):
		name := strings.TrimPrefix(uri, SchemeBuiltin)
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		return r.builtins.Sub(name)

	case strings.HasPrefix(uri, SchemeFile):
		path, err := fileutil.PathFromURI(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
		}
		return openDir(path)

	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)

	case filepath.IsAbs(uri):
		return openDir(uri)
	}

	return r.resolveRelative(uri)
}

func (r *Resolver) resolveRelative(uri string) (Source, error) {
	slashed := filepath.ToSlash(uri)
	isName := ValidateName(uri) == nil

	var candidates []func() (Source, error)
	if r.home != nil {
		candidates = append(candidates, func() (Source, error) { return r.home.Sub(slashed) })
		if isName {
			candidates = append(candidates, func() (Source, error) { return r.home.Sub(PluginsDir + "/" + slashed) })
		}
	}
	if isName {
		candidates = append(candidates, func() (Source, error) { return r.builtins.Sub(slashed) })
	}
	candidates = append(candidates, func() (Source, error) { return openDir(uri) })

	var lastErr error
	for _, try := range candidates {
		src, err := try()
		if err == nil {
			return src, nil
		}
		// A miss under one root moves on to the next; I/O errors stop the search
		if !isNotFoundError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func openDir(path string) (Source, error) {
	src, err := NewFilesystemSource(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPluginNotFound, err)
	}
	return src, nil
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrPluginNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPathTraversal)
}
