package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "languages", "langs":
		return runLanguages(args[1:])
	case "check":
		return runCheck(args[1:])
	case "translate", "tr":
		return runTranslate(args[1:])
	case "serve":
		return runServe(args[1:])
	case "history":
		return runHistory(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	case "health":
		return runHealth(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "quicklang CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  quicklang <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  languages   List source and target languages")
	fmt.Fprintln(os.Stderr, "  check       Check whether a language pair is installed")
	fmt.Fprintln(os.Stderr, "  translate   Translate text, a file or a web page")
	fmt.Fprintln(os.Stderr, "  serve       Start the HTTP API")
	fmt.Fprintln(os.Stderr, "  history     Show recent translations (database required)")
	fmt.Fprintln(os.Stderr, "  hash-token  Hash an API token for API_TOKEN_HASH")
	fmt.Fprintln(os.Stderr, "  health      Verify database connectivity")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"quicklang <command> -h\" for command-specific flags.")
}
