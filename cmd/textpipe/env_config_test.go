package main

// Notes:
// - Tests use t.Setenv() which prevents t.Parallel().

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-textpipe/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("all variables", func(t *testing.T) {
		t.Setenv("TEXTPIPE_CONFIG", "/path/to/config.yaml")
		t.Setenv("TEXTPIPE_HOME", "/srv/textpipe")
		t.Setenv("TEXTPIPE_TYPE", "Person, Location,,")
		t.Setenv("TEXTPIPE_GRAMMAR", "Markdown")
		t.Setenv("TEXTPIPE_FORMAT", "PDF")
		t.Setenv("TEXTPIPE_STORE", "corpus.db")
		t.Setenv("TEXTPIPE_TIMEOUT", "2m")
		t.Setenv("TEXTPIPE_LOG_LEVEL", "DEBUG")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "/path/to/config.yaml" {
			t.Errorf("ConfigPath = %q", cfg.ConfigPath)
		}
		if cfg.Home != "/srv/textpipe" {
			t.Errorf("Home = %q", cfg.Home)
		}
		if !slices.Equal(cfg.Types, []string{"Person", "Location"}) {
			t.Errorf("Types = %v, want [Person Location]", cfg.Types)
		}
		if cfg.Grammar != "markdown" || cfg.Format != "pdf" || cfg.LogLevel != "debug" {
			t.Errorf("enum values should be lowercased: %+v", cfg)
		}
		if cfg.Store != "corpus.db" {
			t.Errorf("Store = %q", cfg.Store)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
		}
	})

	t.Run("invalid timeout ignored", func(t *testing.T) {
		for _, v := range []string{"soon", "-5s", "0s"} {
			t.Setenv("TEXTPIPE_TIMEOUT", v)
			if got := loadEnvConfig().Timeout; got != 0 {
				t.Errorf("TEXTPIPE_TIMEOUT=%q: Timeout = %v, want 0", v, got)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("TEXTPIPE_TYPES", "Person")
	t.Setenv("TEXTPIPE_HOME", "/srv")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	out := buf.String()
	if !strings.Contains(out, "TEXTPIPE_TYPES") {
		t.Errorf("expected warning for TEXTPIPE_TYPES, got %q", out)
	}
	if strings.Contains(out, "TEXTPIPE_HOME") {
		t.Errorf("known variable should not warn, got %q", out)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides config file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Markup.Grammar = "mediawiki"
		applyEnvConfig(&envConfig{
			Home:     "/srv",
			Types:    []string{"Location"},
			Grammar:  "markdown",
			Format:   "pdf",
			Store:    "x.db",
			Timeout:  90 * time.Second,
			LogLevel: "warn",
		}, cfg)

		if cfg.Home != "/srv" || cfg.Markup.Grammar != "markdown" || cfg.Markup.Format != "pdf" {
			t.Errorf("cfg = %+v", cfg)
		}
		if !slices.Equal(cfg.Annotate.Types, []string{"Location"}) {
			t.Errorf("Types = %v", cfg.Annotate.Types)
		}
		if cfg.Store.Path != "x.db" || cfg.PDF.Timeout != 90 || cfg.Log.Level != "warn" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("unset values keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Store.Path = "from-config.db"
		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Store.Path != "from-config.db" {
			t.Errorf("Store.Path = %q, want from-config.db", cfg.Store.Path)
		}
		if !slices.Equal(cfg.Annotate.Types, []string{"Token"}) {
			t.Errorf("Types = %v, want [Token]", cfg.Annotate.Types)
		}
	})
}

func TestLoadSettings_InvalidEnv(t *testing.T) {
	t.Setenv("TEXTPIPE_GRAMMAR", "creole")

	deps := newTestDeps()
	if _, _, err := loadSettings("", deps.Dependencies); err == nil {
		t.Fatal("expected validation error for TEXTPIPE_GRAMMAR=creole")
	}
}
