// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-textpipe/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// IsInCI reports whether a known CI environment variable is set.
func IsInCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	if (IsInCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config with a path and, for bare names, the user config location.
func ForConfigNotFound(name string) string {
	hint := "use --config /path/to/file.yaml"

	if name != "" && !strings.ContainsAny(name, "/\\") {
		if dir, err := os.UserConfigDir(); err == nil {
			hint += " or create " + filepath.Join(dir, "go-textpipe", name+".yaml")
		}
	}

	return format(hint)
}

// ForResourceHome returns hints for resource home errors.
func ForResourceHome() string {
	return format("the home directory needs a textpipe.yaml manifest; omit --home to use the built-in one")
}

// ForPluginDirectory returns hints for plugin registration errors.
func ForPluginDirectory(builtin []string) string {
	hint := "a plugin directory needs a creole.yaml manifest"
	if len(builtin) > 0 {
		hint += "; built-in: builtin:" + strings.Join(builtin, ", builtin:")
	}
	return format(hint)
}

// ForUnknownResource returns hints for resource kinds no plugin provides.
func ForUnknownResource() string {
	return format("register a plugin providing it with --plugin (default: builtin:annie)")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForGrammar returns hints for unsupported markup grammars.
func ForGrammar(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
