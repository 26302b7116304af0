package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textpipe <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  annotate   Run the information extraction pipeline over documents")
	fmt.Fprintln(w, "  markup     Convert MediaWiki or Markdown markup to HTML, Markdown or PDF")
	fmt.Fprintln(w, "  doctor     Check resource home, plugins and browser")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'textpipe help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only print errors")
	fmt.Fprintln(w, "  -v, --verbose             Print debug status lines")
	fmt.Fprintln(w, "      --log-json            Print status lines as JSON")
}

// printAnnotateUsage prints usage for the annotate command.
func printAnnotateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textpipe annotate [flags] [document...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the default pipeline and print the strings of the requested")
	fmt.Fprintln(w, "annotation types, one per line. Without documents, annotates piped")
	fmt.Fprintf(w, "stdin, or %q when nothing is piped.\n", defaultSentence)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document    File path or file:// URI (.html/.htm parsed as HTML, .pdf as PDF)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "  -t, --type <types>        Annotation types to print, comma-separated (default: Token)")
	fmt.Fprintln(w, "      --home <dir>          Resource home directory (default: built-in)")
	fmt.Fprintln(w, "      --plugin <uri>        Plugin to register, repeatable (default: builtin:annie)")
	fmt.Fprintln(w, "      --lists-only          Recognise entities from gazetteer lists only")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Results:")
	fmt.Fprintln(w, "      --store <file>        Save documents and annotations to a SQLite file")
	fmt.Fprintln(w, "      --stats               Print a metrics summary to stderr")
	fmt.Fprintln(w, "      --yaml                Print results as YAML")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  textpipe annotate")
	fmt.Fprintln(w, "  textpipe annotate -t Person,Location report.txt page.html")
	fmt.Fprintln(w, "  textpipe annotate --store corpus.db --stats paper.pdf")
}

// printMarkupUsage prints usage for the markup command.
func printMarkupUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textpipe markup [flags] [file|-]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markup to a complete HTML document. Reads the file, or stdin")
	fmt.Fprintln(w, "when piped or given '-'. Without input, converts")
	fmt.Fprintf(w, "%q.\n", defaultMarkup)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -g, --grammar <name>      Input grammar: mediawiki (default), markdown")
	fmt.Fprintln(w, "  -f, --format <name>       Output format: html (default), markdown, pdf")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "      --title <s>           Document title (default: input file name)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --page-numbers        Number pages in the footer")
	fmt.Fprintln(w, "      --timeout <d>         Rendering timeout (default: 30s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  textpipe markup")
	fmt.Fprintln(w, "  textpipe markup page.wiki -o page.html")
	fmt.Fprintln(w, "  cat notes.md | textpipe markup -g markdown -f pdf -o notes.pdf")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textpipe doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the resource home, the configured plugins and Chrome availability.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --home <dir>          Resource home directory")
	fmt.Fprintln(w, "      --plugin <uri>        Plugin to register, repeatable")
}

// runHelp prints help for a command and returns the exit code.
func runHelp(args []string, deps *Dependencies) int {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "annotate":
		printAnnotateUsage(deps.Stdout)
	case "markup":
		printMarkupUsage(deps.Stdout)
	case "doctor":
		printDoctorUsage(deps.Stdout)
	case "version":
		fmt.Fprintln(deps.Stdout, "Usage: textpipe version")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(deps.Stdout, "Usage: textpipe help [command]")
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(deps.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
