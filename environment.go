package textpipe

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-textpipe/internal/metrics"
	"github.com/alnah/go-textpipe/internal/nlp"
	"github.com/alnah/go-textpipe/internal/resources"
)

// Environment is the initialised NLP engine: a resource home, the registered
// plugins and the processing resources they make available. It is written by
// initialisation and plugin registration, and read by everything else.
// Create one with Init or InitEmbedded and pass it explicitly.
type Environment struct {
	home     resources.Source
	manifest *resources.HomeManifest
	resolver *resources.Resolver
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics

	mu        sync.RWMutex
	plugins   map[string]Plugin
	provided  mapset.Set[ResourceKind]
	factories map[ResourceKind]ResourceFactory
	gazetteer *nlp.Gazetteer
}

// Plugin describes a registered plugin directory.
type Plugin struct {
	Name        string
	Description string
	Location    string
	Resources   []ResourceKind
	ListEntries int // gazetteer phrases loaded from the plugin's lists
}

// EnvOption configures an Environment.
type EnvOption func(*Environment)

// WithLogger sets the logger for status lines and diagnostics.
// Defaults to a logrus logger writing warnings and errors to stderr.
func WithLogger(l logrus.FieldLogger) EnvOption {
	return func(e *Environment) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFactory registers a factory for a resource kind, replacing the built-in
// one if any. The kind is still only creatable once a plugin declares it.
func WithFactory(kind ResourceKind, f ResourceFactory) EnvOption {
	return func(e *Environment) {
		if f != nil {
			e.factories[kind] = f
		}
	}
}

// Init initialises an environment from a resource home directory.
// The directory must contain a textpipe.yaml manifest; plugins it lists are
// registered before Init returns.
func Init(home string, opts ...EnvOption) (*Environment, error) {
	if home == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidResourceHome)
	}
	src, err := resources.NewFilesystemSource(home)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResourceHome, err)
	}
	return initEnvironment(src, opts...)
}

// InitEmbedded initialises an environment from the resource home compiled
// into the binary. Built-in plugins still need RegisterPluginDirectory.
func InitEmbedded(opts ...EnvOption) (*Environment, error) {
	return initEnvironment(resources.NewEmbeddedSource(), opts...)
}

func initEnvironment(src resources.Source, opts ...EnvOption) (*Environment, error) {
	e := &Environment{
		home:      src,
		logger:    defaultLogger(),
		metrics:   metrics.New(),
		plugins:   make(map[string]Plugin),
		provided:  mapset.NewSet[ResourceKind](),
		factories: builtinFactories(),
		gazetteer: nlp.NewGazetteer(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.WithField("home", src.Location()).Info("Initialising textpipe...")

	manifest, err := resources.LoadHomeManifest(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResourceHome, err)
	}
	e.manifest = manifest

	resolver, err := resources.NewResolver(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResourceHome, err)
	}
	e.resolver = resolver

	for _, uri := range manifest.Plugins {
		if err := e.RegisterPluginDirectory(uri); err != nil {
			return nil, err
		}
	}

	e.logger.WithFields(logrus.Fields{
		"name":    manifest.Name,
		"version": manifest.Version,
	}).Info("textpipe initialised")
	return e, nil
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// RegisterPluginDirectory registers a plugin: a directory holding a
// creole.yaml manifest and the gazetteer lists it names. uri is a path,
// a file:// URI or builtin:<name>. Registering a plugin already registered
// under the same name is a no-op.
func (e *Environment) RegisterPluginDirectory(uri string) error {
	if e == nil {
		return ErrNilEnvironment
	}

	src, err := e.resolver.Resolve(uri)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPluginDirectory, uri, err)
	}
	manifest, err := resources.LoadPluginManifest(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPluginDirectory, uri, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.plugins[manifest.Name]; ok {
		if existing.Location != src.Location() {
			e.logger.WithFields(logrus.Fields{
				"plugin":     manifest.Name,
				"registered": existing.Location,
				"ignored":    src.Location(),
			}).Warn("plugin already registered from another directory")
		}
		return nil
	}

	kinds := make([]ResourceKind, 0, len(manifest.Resources))
	for _, r := range manifest.Resources {
		kind := ResourceKind(r)
		if _, ok := e.factories[kind]; !ok {
			return fmt.Errorf("%w: %s: plugin %q declares unknown resource %q", ErrPluginDirectory, uri, manifest.Name, r)
		}
		kinds = append(kinds, kind)
	}

	// Lists load into a staging gazetteer; a bad list leaves e untouched
	staged := nlp.NewGazetteer()
	entries := 0
	for _, l := range manifest.Gazetteer.Lists {
		data, err := src.ReadFile(l.File)
		if err != nil {
			return fmt.Errorf("%w: %s: gazetteer list: %v", ErrPluginDirectory, uri, err)
		}
		info := nlp.ListInfo{MajorType: l.MajorType, MinorType: l.MinorType}
		n, err := staged.LoadList(bytes.NewReader(data), info)
		if err != nil {
			return fmt.Errorf("%w: %s: reading %s: %v", ErrPluginDirectory, uri, l.File, err)
		}
		entries += n
	}
	e.gazetteer.Merge(staged)

	for _, k := range kinds {
		e.provided.Add(k)
	}
	e.plugins[manifest.Name] = Plugin{
		Name:        manifest.Name,
		Description: manifest.Description,
		Location:    src.Location(),
		Resources:   kinds,
		ListEntries: entries,
	}
	e.metrics.Plugins.Set(float64(len(e.plugins)))

	e.logger.WithFields(logrus.Fields{
		"plugin":    manifest.Name,
		"location":  src.Location(),
		"resources": len(kinds),
		"phrases":   entries,
	}).Info("plugin loaded")
	return nil
}

// CreateResource instantiates a processing resource of the given kind.
// Returns ErrUnknownResource if no registered plugin provides the kind and
// ErrResourceInit if the factory fails.
func (e *Environment) CreateResource(kind ResourceKind, params Params) (ProcessingResource, error) {
	if e == nil {
		return nil, ErrNilEnvironment
	}

	e.mu.RLock()
	factory, ok := e.factories[kind]
	provided := e.provided.Contains(kind)
	e.mu.RUnlock()

	if !ok || !provided {
		return nil, fmt.Errorf("%w: %q (no registered plugin provides it)", ErrUnknownResource, kind)
	}

	pr, err := factory.Create(e, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceInit, kind, err)
	}
	e.logger.WithFields(logrus.Fields{"resource": pr.Name(), "kind": kind}).Debug("resource created")
	return pr, nil
}

// Plugins returns the registered plugins sorted by name.
func (e *Environment) Plugins() []Plugin {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Plugin, 0, len(e.plugins))
	for _, p := range e.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AvailableResources returns the kinds registered plugins provide, sorted.
func (e *Environment) AvailableResources() []ResourceKind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := e.provided.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Home returns the location of the resource home.
func (e *Environment) Home() string { return e.home.Location() }

// Name returns the resource home's name from its manifest.
func (e *Environment) Name() string { return e.manifest.Name }

// Version returns the resource home's version from its manifest.
func (e *Environment) Version() string { return e.manifest.Version }

// Logger returns the environment's logger.
func (e *Environment) Logger() logrus.FieldLogger { return e.logger }

// MetricsRegistry returns the registry holding this environment's collectors.
func (e *Environment) MetricsRegistry() *prometheus.Registry { return e.metrics.Registry }

// matchGazetteer runs the merged gazetteer of every registered plugin.
func (e *Environment) matchGazetteer(tokens []nlp.Span) []nlp.Lookup {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gazetteer.Match(tokens)
}

// gazetteerSize returns the number of distinct phrases loaded.
func (e *Environment) gazetteerSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gazetteer.Size()
}
