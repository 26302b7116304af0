package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textpipe.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Home != "" {
		t.Errorf("Home = %q, want empty (embedded)", cfg.Home)
	}
	if len(cfg.Plugins) != 1 || cfg.Plugins[0] != "builtin:annie" {
		t.Errorf("Plugins = %v, want [builtin:annie]", cfg.Plugins)
	}
	if len(cfg.Annotate.Types) != 1 || cfg.Annotate.Types[0] != "Token" {
		t.Errorf("Annotate.Types = %v, want [Token]", cfg.Annotate.Types)
	}
	if cfg.Markup.Grammar != "mediawiki" || cfg.Markup.Format != "html" {
		t.Errorf("Markup = %+v, want mediawiki/html", cfg.Markup)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestCheckLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty value", "", false},
		{"at limit", "1234567890", false},
		{"over limit", "12345678901", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkLength("test.field", tt.value, 10)
			if tt.wantErr != errors.Is(err, ErrFieldTooLong) {
				t.Errorf("checkLength(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:   "empty enums mean default",
			mutate: func(c *Config) { c.Markup = MarkupConfig{}; c.Log = LogConfig{} },
		},
		{
			name:    "unknown grammar",
			mutate:  func(c *Config) { c.Markup.Grammar = "textile" },
			wantErr: ErrInvalidValue,
			wantMsg: "markup.grammar",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Markup.Format = "docx" },
			wantErr: ErrInvalidValue,
			wantMsg: "markup.format",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: ErrInvalidValue,
			wantMsg: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
			wantMsg: "log.format",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.PDF.Timeout = -1 },
			wantErr: ErrInvalidValue,
			wantMsg: "pdf.timeout",
		},
		{
			name:    "title too long",
			mutate:  func(c *Config) { c.Markup.Title = strings.Repeat("x", MaxTitleLength+1) },
			wantErr: ErrFieldTooLong,
			wantMsg: "markup.title",
		},
		{
			name:    "annotation type too long",
			mutate:  func(c *Config) { c.Annotate.Types = []string{"Person", strings.Repeat("T", MaxTypeLength+1)} },
			wantErr: ErrFieldTooLong,
			wantMsg: "annotate.types[1]",
		},
		{
			name: "too many plugins",
			mutate: func(c *Config) {
				c.Plugins = make([]string, MaxPlugins+1)
			},
			wantErr: ErrFieldTooLong,
			wantMsg: "plugins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to name %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `home: "/opt/textpipe"
plugins:
  - builtin:annie
  - /opt/plugins/extra
annotate:
  types: [Person, Location]
  listsOnly: true
markup:
  grammar: markdown
  format: pdf
pdf:
  pageNumbers: true
  timeout: 60
store:
  path: "/tmp/annotations.db"
log:
  format: json
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Home != "/opt/textpipe" {
			t.Errorf("Home = %q", cfg.Home)
		}
		if len(cfg.Plugins) != 2 || cfg.Plugins[1] != "/opt/plugins/extra" {
			t.Errorf("Plugins = %v", cfg.Plugins)
		}
		if len(cfg.Annotate.Types) != 2 || !cfg.Annotate.ListsOnly {
			t.Errorf("Annotate = %+v", cfg.Annotate)
		}
		if cfg.Markup.Grammar != "markdown" || cfg.Markup.Format != "pdf" {
			t.Errorf("Markup = %+v", cfg.Markup)
		}
		if !cfg.PDF.PageNumbers || cfg.PDF.Timeout != 60 {
			t.Errorf("PDF = %+v", cfg.PDF)
		}
		if cfg.Store.Path != "/tmp/annotations.db" {
			t.Errorf("Store.Path = %q", cfg.Store.Path)
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(writeConfig(t, "store:\n  path: a.db\n"))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Markup.Grammar != "mediawiki" || cfg.Log.Level != "info" {
			t.Errorf("defaults lost: markup %+v, log %+v", cfg.Markup, cfg.Log)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "plugins: [unclosed"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "style: default\n"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "markup:\n  grammar: textile\n"))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("unknown name lists searched paths", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("textpipe-no-such-config")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "textpipe-no-such-config.yml") {
			t.Errorf("error should list tried paths, got %q", err)
		}
	})
}
