package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/reader"
)

const historyPreviewChars = 48

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	envLoader := cli.AddEnvFlag(fs, ".env", "Path to .env file")
	limit := fs.Int("limit", history.DefaultListLimit, "Number of translations to show")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *limit <= 0 || *limit > history.MaxListLimit {
		fmt.Fprintf(os.Stderr, "--limit must be between 1 and %d\n", history.MaxListLimit)
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := openRuntime(ctx, envLoader, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer rt.close()

	if rt.pool == nil {
		fmt.Fprintf(os.Stderr, "%v\n", errDatabaseRequired)
		return 1
	}
	if rt.history == nil {
		fmt.Fprintln(os.Stderr, "history is disabled (HISTORY_ENABLED=false)")
		return 1
	}

	records, err := rt.history.ListRecent(ctx, *limit)
	if err != nil {
		rt.logger.Error().Err(err).Msg("list history failed")
		fmt.Fprintf(os.Stderr, "list history: %v\n", err)
		return 1
	}

	if err := writeHistory(os.Stdout, records, outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func writeHistory(w io.Writer, records []history.Record, format string) error {
	if format == outputFormatJSON {
		return printJSON(w, map[string]any{"items": records})
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		source := record.RequestedSource
		if record.ResolvedSource != "" && record.ResolvedSource != source {
			source = fmt.Sprintf("%s (%s)", source, record.ResolvedSource)
		}
		rows = append(rows, []string{
			formatUTCTimestamp(record.CreatedAt),
			source,
			record.Target,
			record.ProviderName,
			strconv.FormatInt(record.LatencyMS, 10),
			reader.Preview(record.OriginalText, historyPreviewChars),
			reader.Preview(record.TranslatedText, historyPreviewChars),
		})
	}
	return writeTable(w, []string{"CREATED_AT", "FROM", "TO", "PROVIDER", "LATENCY_MS", "ORIGINAL", "TRANSLATION"}, rows)
}
