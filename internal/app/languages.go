package app

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOutput := fs.Bool("json", false, "Print JSON instead of a table")
	targetsOnly := fs.Bool("targets", false, "List target languages only")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	if err := writeLanguages(os.Stdout, catalog.Default(), *jsonOutput, *targetsOnly); err != nil {
		fmt.Fprintf(os.Stderr, "languages failed: %v\n", err)
		return 1
	}
	return 0
}

func writeLanguages(w io.Writer, languages *catalog.Catalog, jsonOutput, targetsOnly bool) error {
	if jsonOutput {
		payload := map[string]any{"targets": languages.TargetOptions()}
		if !targetsOnly {
			payload["sources"] = languages.SourceOptions()
		}
		return printJSON(w, payload)
	}

	options := languages.SourceOptions()
	if targetsOnly {
		options = languages.TargetOptions()
	}
	rows := make([][]string, 0, len(options))
	for _, option := range options {
		rows = append(rows, []string{option.Code, option.Label, option.Native})
	}
	return writeTable(w, []string{"CODE", "LANGUAGE", "NATIVE"}, rows)
}
