package main

import (
	"context"
	"errors"
	"os"

	textpipe "github.com/alnah/go-textpipe"
	"github.com/alnah/go-textpipe/internal/config"
	"github.com/alnah/go-textpipe/internal/datastore"
	"github.com/alnah/go-textpipe/internal/hints"
	"github.com/alnah/go-textpipe/internal/loader"
	"github.com/alnah/go-textpipe/internal/render"
	"github.com/alnah/go-textpipe/internal/resources"
)

// Exit codes for the textpipe CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied, unreadable document
	ExitResource = 4 // Resource home, plugin or processing resource errors
	ExitBrowser  = 5 // Browser/Chrome errors
)

// CLI errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
	ErrReadInput      = errors.New("cannot read input")
	ErrWriteOutput    = errors.New("cannot write output")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 5)
	if errors.Is(err, render.ErrBrowserConnect) ||
		errors.Is(err, render.ErrPageCreate) ||
		errors.Is(err, render.ErrPageLoad) ||
		errors.Is(err, render.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Resource errors (exit 4)
	if errors.Is(err, textpipe.ErrInvalidResourceHome) ||
		errors.Is(err, textpipe.ErrPluginDirectory) ||
		errors.Is(err, textpipe.ErrUnknownResource) ||
		errors.Is(err, textpipe.ErrResourceInit) {
		return ExitResource
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, textpipe.ErrDocumentLoad) ||
		errors.Is(err, loader.ErrRead) ||
		errors.Is(err, datastore.ErrOpen) ||
		errors.Is(err, datastore.ErrSave) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, textpipe.ErrUnsupportedGrammar) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, render.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		var name string
		var cerr *configLoadError
		if errors.As(err, &cerr) {
			name = cerr.name
		}
		return hints.ForConfigNotFound(name)
	case errors.Is(err, textpipe.ErrInvalidResourceHome):
		return hints.ForResourceHome()
	case errors.Is(err, textpipe.ErrPluginDirectory):
		return hints.ForPluginDirectory(resources.BuiltinPlugins())
	case errors.Is(err, textpipe.ErrUnknownResource):
		return hints.ForUnknownResource()
	case errors.Is(err, textpipe.ErrUnsupportedGrammar):
		return hints.ForGrammar(grammarNames())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

func grammarNames() []string {
	var names []string
	for _, g := range textpipe.Grammars() {
		names = append(names, string(g))
	}
	return names
}
