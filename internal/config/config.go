// Package config loads textpipe's YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-textpipe/internal/fileutil"
	"github.com/alnah/go-textpipe/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxPluginURI      = 4096
	MaxPlugins        = 64
	MaxTypeLength     = 100 // Annotation type name
	MaxTypes          = 64
	MaxTitleLength    = 200 // HTML <title> and PDF footer
	MaxTimeoutSeconds = 600
)

// Allowed enum values.
var (
	Grammars   = []string{"mediawiki", "markdown"}
	Formats    = []string{"html", "markdown", "pdf"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// ConfigDirName is the directory under os.UserConfigDir searched for named configs.
const ConfigDirName = "go-textpipe"

// Config holds all configuration for the textpipe CLI.
type Config struct {
	Home     string         `yaml:"home"`    // Resource home (empty = embedded)
	Plugins  []string       `yaml:"plugins"` // Plugin URIs registered at startup
	Annotate AnnotateConfig `yaml:"annotate"`
	Markup   MarkupConfig   `yaml:"markup"`
	PDF      PDFConfig      `yaml:"pdf"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// AnnotateConfig defines the annotate command's defaults.
type AnnotateConfig struct {
	Types     []string `yaml:"types"`     // Annotation types printed (default: Token)
	ListsOnly bool     `yaml:"listsOnly"` // Gazetteer lists only, no statistical model
	Stats     bool     `yaml:"stats"`     // Print a metrics summary after the run
}

// MarkupConfig defines the markup command's defaults.
type MarkupConfig struct {
	Grammar string `yaml:"grammar"` // "mediawiki" (default) or "markdown"
	Format  string `yaml:"format"`  // "html" (default), "markdown" or "pdf"
	Title   string `yaml:"title"`   // Document <title>
}

// PDFConfig defines PDF output options.
type PDFConfig struct {
	PageNumbers bool `yaml:"pageNumbers"`
	Timeout     int  `yaml:"timeout"` // seconds (0 = renderer default)
}

// StoreConfig defines annotation persistence.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file (empty = no persistence)
}

// LogConfig defines status line output.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info" (default), "warn", "error"
	Format string `yaml:"format"` // "text" (default) or "json"
}

// Validate reports the first field that is too long or outside its enum.
// LoadConfig runs it; callers building a Config by hand should too.
func (c *Config) Validate() error {
	checks := []func() error{
		func() error { return checkLength("home", c.Home, MaxPathLength) },
		func() error { return checkList("plugins", c.Plugins, MaxPlugins, MaxPluginURI) },
		func() error { return checkList("annotate.types", c.Annotate.Types, MaxTypes, MaxTypeLength) },
		func() error { return checkEnum("markup.grammar", c.Markup.Grammar, Grammars) },
		func() error { return checkEnum("markup.format", c.Markup.Format, Formats) },
		func() error { return checkLength("markup.title", c.Markup.Title, MaxTitleLength) },
		func() error {
			if c.PDF.Timeout < 0 || c.PDF.Timeout > MaxTimeoutSeconds {
				return fmt.Errorf("%w: pdf.timeout %d (must be 0-%d seconds)", ErrInvalidValue, c.PDF.Timeout, MaxTimeoutSeconds)
			}
			return nil
		},
		func() error { return checkLength("store.path", c.Store.Path, MaxPathLength) },
		func() error { return checkEnum("log.level", c.Log.Level, LogLevels) },
		func() error { return checkEnum("log.format", c.Log.Format, LogFormats) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(field, value string, limit int) error {
	if len(value) > limit {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, field, len(value), limit)
	}
	return nil
}

func checkList(field string, values []string, maxEntries, maxLength int) error {
	if len(values) > maxEntries {
		return fmt.Errorf("%w: %s (%d entries, max %d)", ErrFieldTooLong, field, len(values), maxEntries)
	}
	for i, v := range values {
		if err := checkLength(fmt.Sprintf("%s[%d]", field, i), v, maxLength); err != nil {
			return err
		}
	}
	return nil
}

// checkEnum accepts the empty value, which means "use the default".
func checkEnum(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %s %q (allowed: %s)", ErrInvalidValue, field, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Plugins:  []string{"builtin:annie"},
		Annotate: AnnotateConfig{Types: []string{"Token"}},
		Markup:   MarkupConfig{Grammar: "mediawiki", Format: "html"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a config file over DefaultConfig and validates it.
//
// A value containing a path separator is read as a path. A bare name is
// looked up as name.yaml or name.yml, first in the working directory and then
// under os.UserConfigDir()/go-textpipe. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		found, err := findNamedConfig(nameOrPath)
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-chosen config file
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findNamedConfig(name string) (string, error) {
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, ConfigDirName))
	}

	var candidates []string
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(dir, name+ext)
			if fileutil.FileExists(candidate) {
				return candidate, nil
			}
			candidates = append(candidates, candidate)
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}
