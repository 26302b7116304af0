package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	textpipe "github.com/alnah/go-textpipe"
	"github.com/alnah/go-textpipe/internal/config"
)

// configLoadError keeps the requested config name for hints.
type configLoadError struct {
	name string
	err  error
}

func (e *configLoadError) Error() string { return e.err.Error() }
func (e *configLoadError) Unwrap() error { return e.err }

// loadSettings resolves the configuration of one command run:
// defaults, then the config file (--config or TEXTPIPE_CONFIG), then
// TEXTPIPE_* variables. Commands apply their flags on top.
func loadSettings(configFlag string, deps *Dependencies) (*config.Config, *envConfig, error) {
	env := loadEnvConfig()
	warnUnknownEnvVars(deps.Stderr)

	name := configFlag
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, &configLoadError{name: name, err: err}
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, env, nil
}

// newLogger builds the status line logger. --quiet and --verbose win over
// the configured level; --log-json wins over the configured format.
func newLogger(f *commonFlags, cfg config.LogConfig, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}
	switch {
	case f.quiet:
		level = logrus.ErrorLevel
	case f.verbose:
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	if f.logJSON || cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			DisableQuote:     true,
		})
	}
	return l
}

// openEnvironment initialises the resource home and registers plugins.
// An empty home selects the built-in one.
func openEnvironment(home string, plugins []string, log logrus.FieldLogger) (*textpipe.Environment, error) {
	var (
		env *textpipe.Environment
		err error
	)
	if home == "" {
		env, err = textpipe.InitEmbedded(textpipe.WithLogger(log))
	} else {
		env, err = textpipe.Init(home, textpipe.WithLogger(log))
	}
	if err != nil {
		return nil, err
	}

	for _, uri := range plugins {
		if err := env.RegisterPluginDirectory(uri); err != nil {
			return nil, err
		}
	}
	return env, nil
}
