package textpipe

import "errors"

// Sentinel errors for library operations.
var (
	// Initialisation errors.
	ErrInvalidResourceHome = errors.New("invalid resource home")
	ErrPluginDirectory     = errors.New("cannot register plugin directory")
	ErrNilEnvironment      = errors.New("environment is nil")

	// Resource creation errors.
	ErrUnknownResource = errors.New("unknown processing resource")
	ErrResourceInit    = errors.New("processing resource initialisation failed")

	// Execution errors.
	ErrNoCorpus           = errors.New("no corpus set")
	ErrExecution          = errors.New("pipeline execution failed")
	ErrMissingAnnotations = errors.New("required annotations missing")

	// Document model errors.
	ErrDocumentLoad    = errors.New("cannot load document")
	ErrInvalidSpan     = errors.New("invalid annotation span")
	ErrUnknownFeature  = errors.New("unknown feature key")
	ErrEmptyAnnotation = errors.New("annotation type cannot be empty")

	// Markup errors.
	ErrMarkupParse        = errors.New("markup parse failed")
	ErrUnsupportedGrammar = errors.New("unsupported markup grammar")
)
