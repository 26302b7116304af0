package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-textpipe/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string   // TEXTPIPE_CONFIG: config file name or path
	Home       string   // TEXTPIPE_HOME: resource home directory
	Types      []string // TEXTPIPE_TYPE: annotation types, comma-separated

	// Tier 2 - Commands
	Grammar string        // TEXTPIPE_GRAMMAR: markup grammar
	Format  string        // TEXTPIPE_FORMAT: markup output format
	Store   string        // TEXTPIPE_STORE: SQLite file for annotations
	Timeout time.Duration // TEXTPIPE_TIMEOUT: PDF rendering timeout

	// Tier 3 - Logging
	LogLevel string // TEXTPIPE_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid TEXTPIPE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEXTPIPE_CONFIG":    true,
	"TEXTPIPE_HOME":      true,
	"TEXTPIPE_TYPE":      true,
	"TEXTPIPE_GRAMMAR":   true,
	"TEXTPIPE_FORMAT":    true,
	"TEXTPIPE_STORE":     true,
	"TEXTPIPE_TIMEOUT":   true,
	"TEXTPIPE_LOG_LEVEL": true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("TEXTPIPE_CONFIG"),
		Home:       os.Getenv("TEXTPIPE_HOME"),
		Types:      splitList(os.Getenv("TEXTPIPE_TYPE")),
		Grammar:    strings.ToLower(os.Getenv("TEXTPIPE_GRAMMAR")),
		Format:     strings.ToLower(os.Getenv("TEXTPIPE_FORMAT")),
		Store:      os.Getenv("TEXTPIPE_STORE"),
		LogLevel:   strings.ToLower(os.Getenv("TEXTPIPE_LOG_LEVEL")),
	}

	// Invalid or non-positive durations are ignored
	if timeout := os.Getenv("TEXTPIPE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TEXTPIPE_* variables.
// Helps catch typos like TEXTPIPE_TYPES instead of TEXTPIPE_TYPE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "TEXTPIPE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with the variables that are set.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Home != "" {
		cfg.Home = env.Home
	}
	if len(env.Types) > 0 {
		cfg.Annotate.Types = env.Types
	}
	if env.Grammar != "" {
		cfg.Markup.Grammar = env.Grammar
	}
	if env.Format != "" {
		cfg.Markup.Format = env.Format
	}
	if env.Store != "" {
		cfg.Store.Path = env.Store
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = int(env.Timeout.Round(time.Second) / time.Second)
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
