package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-textpipe/internal/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// dotEnvFile is loaded from the working directory when present.
// Variables already set in the process environment win.
const dotEnvFile = ".env"

func main() {
	if fileutil.FileExists(dotEnvFile) {
		if err := godotenv.Load(dotEnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", dotEnvFile, err)
		}
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultDeps())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
func runMain(ctx context.Context, args []string, deps *Dependencies) int {
	if len(args) < 2 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "annotate":
		err = runAnnotate(ctx, rest, deps)
	case "markup":
		err = runMarkup(ctx, rest, deps)
	case "doctor":
		return runDoctorCmd(rest, deps)
	case "version", "--version":
		fmt.Fprintf(deps.Stdout, "textpipe %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, deps)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(deps.Stderr, "error: %v%s\n", err, hintFor(err))
	if errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintln(deps.Stderr)
		printUsage(deps.Stderr)
	}
	return exitCodeFor(err)
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
