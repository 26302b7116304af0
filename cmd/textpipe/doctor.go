package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-textpipe/internal/fileutil"
	"github.com/alnah/go-textpipe/internal/hints"
	"github.com/alnah/go-textpipe/internal/render"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Home     homeInfo     `json:"home"`
	Plugins  []pluginInfo `json:"plugins"`
	Chrome   chromeInfo   `json:"chrome"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// homeInfo describes the resource home.
type homeInfo struct {
	OK       bool   `json:"ok"`
	Location string `json:"location,omitempty"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
}

// pluginInfo describes one registered plugin.
type pluginInfo struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Resources []string `json:"resources"`
	Phrases   int      `json:"phrases"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorFlags holds the doctor command's flags.
type doctorFlags struct {
	config    string
	json      bool
	resources resourceFlags
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, deps *Dependencies) int {
	f := &doctorFlags{}
	fs := newFlagSet("doctor")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addResourceFlags(fs, &f.resources)
	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(deps.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(f, deps)

	if f.json {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(deps.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctor runs every check. Later checks read what earlier ones found.
func runDoctor(f *doctorFlags, deps *Dependencies) *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkResources(r, f, deps)
	checkChrome(r)
	checkEnvironment(r)
	checkSystem(r)

	switch {
	case len(r.Errors) > 0:
		r.Status = "errors"
	case len(r.Warnings) > 0:
		r.Status = "warnings"
	default:
		r.Status = "ready"
	}
	return r
}

// checkResources opens the configured home and plugins the way annotate does.
func checkResources(r *doctorResult, f *doctorFlags, deps *Dependencies) {
	cfg, _, err := loadSettings(f.config, deps)
	if err != nil {
		r.fail("Config: %v", err)
		return
	}
	mergeAnnotateFlags(&annotateFlags{resources: f.resources}, cfg)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	env, err := openEnvironment(cfg.Home, cfg.Plugins, quiet)
	if err != nil {
		r.fail("%v", err)
		return
	}

	r.Home = homeInfo{OK: true, Location: env.Home(), Name: env.Name(), Version: env.Version()}
	for _, p := range env.Plugins() {
		info := pluginInfo{Name: p.Name, Location: p.Location, Phrases: p.ListEntries}
		for _, kind := range p.Resources {
			info.Resources = append(info.Resources, string(kind))
		}
		r.Plugins = append(r.Plugins, info)
	}
	if len(r.Plugins) == 0 {
		r.warn("No plugin registered; annotate needs one (e.g. --plugin builtin:annie)")
	}
}

// checkChrome looks for the browser used by markup --format pdf. Other
// commands work without it, so problems are warnings.
func checkChrome(r *doctorResult) {
	bin, found := render.BrowserPath()
	if !found {
		r.warn("Chrome/Chromium not found; markup --format pdf needs it. Install Chrome or set ROD_BROWSER_BIN")
		return
	}
	if _, err := os.Stat(bin); err != nil {
		r.warn("Chrome not found at %s", bin)
		return
	}

	r.Chrome = chromeInfo{Found: true, Path: bin, Sandbox: r.Env.NoSandbox != "1"}

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- rod lookup or ROD_BROWSER_BIN
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

func checkEnvironment(r *doctorResult) {
	r.Env.Container = hints.IsInContainer()
	r.Env.CI = hints.IsInCI()

	sandboxed := r.Env.NoSandbox != "1"
	if r.Chrome.Found && sandboxed && (r.Env.Container || r.Env.CI) {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem writes a scratch file to the temp directory the PDF renderer writes to.
func checkSystem(r *doctorResult) {
	scratch, cleanup, err := fileutil.WriteTempFile("textpipe doctor", "tmp")
	if err != nil {
		r.fail("Temp directory not writable: %s", os.TempDir())
		return
	}
	cleanup()
	r.System.TempWritable = scratch != ""
}

// report writes indented status lines under section headings.
type report struct{ w io.Writer }

func (p report) section(title string) { fmt.Fprintln(p.w, title) }
func (p report) end()                 { fmt.Fprintln(p.w) }

func (p report) line(tag, format string, args ...any) {
	fmt.Fprintf(p.w, "  [%s] %s\n", tag, fmt.Sprintf(format, args...))
}

// printDoctorResult writes the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	p := report{w: w}
	p.section("textpipe doctor")
	p.end()

	p.section("Resources")
	if !r.Home.OK {
		p.line("ERROR", "Not initialised")
	} else {
		p.line("OK", "Home: %s (%s %s)", r.Home.Location, r.Home.Name, r.Home.Version)
		for _, pl := range r.Plugins {
			p.line("OK", "Plugin %s: %d resources, %d phrases (%s)", pl.Name, len(pl.Resources), pl.Phrases, pl.Location)
		}
	}
	p.end()

	p.section("Chrome/Chromium")
	switch {
	case !r.Chrome.Found:
		p.line("WARN", "Not found")
	default:
		p.line("OK", "Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			p.line("OK", "Version: %s", r.Chrome.Version)
		}
		sandbox := "enabled"
		if !r.Chrome.Sandbox {
			sandbox = "disabled (ROD_NO_SANDBOX=1)"
		}
		p.line("OK", "Sandbox: %s", sandbox)
	}
	p.end()

	p.section("Environment")
	p.line("OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		p.line("OK", "Container: detected")
	}
	if r.Env.CI {
		p.line("OK", "CI: detected")
	}
	p.end()

	p.section("System")
	if r.System.TempWritable {
		p.line("OK", "Temp directory: writable")
	} else {
		p.line("ERROR", "Temp directory: not writable")
	}
	p.end()

	for _, group := range []struct {
		title, tag string
		items      []string
	}{
		{"Warnings:", "WARN", r.Warnings},
		{"Errors:", "ERROR", r.Errors},
	} {
		if len(group.items) == 0 {
			continue
		}
		p.section(group.title)
		for _, item := range group.items {
			p.line(group.tag, "%s", item)
		}
		p.end()
	}

	status := map[string]string{
		"ready":    "READY",
		"warnings": "READY (with warnings)",
	}[r.Status]
	if status == "" {
		status = "NOT READY"
	}
	fmt.Fprintf(w, "Status: %s\n", status)
}
