package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/translation"
)

type checkOutput struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Probe   string `json:"probe,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	envLoader := cli.AddEnvFlag(fs, ".env", "Path to .env file")
	from := fs.String("from", "", "Source language code, or auto")
	to := fs.String("to", "", "Target language code")
	providerName := fs.String("provider", "", "Translation provider (default from TRANSLATION_PROVIDER)")
	timeout := fs.Duration("timeout", 30*time.Second, "Availability check timeout")
	jsonOutput := fs.Bool("json", false, "Print JSON")
	installed := fs.Bool("installed", false, "List the language pairs that already have a prepared model")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !*installed && strings.TrimSpace(*to) == "" {
		fmt.Fprintln(os.Stderr, "--to is required")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := openRuntime(ctx, envLoader, *providerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer rt.close()

	if *installed {
		pairs, err := rt.models.ListInstalledPairs(ctx)
		if err != nil {
			rt.logger.Error().Err(err).Msg("list installed models failed")
			fmt.Fprintf(os.Stderr, "list installed models: %v\n", err)
			return 1
		}
		if err := writeInstalledPairs(os.Stdout, pairs, *jsonOutput); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return 1
		}
		return 0
	}

	fallbackSource, _ := defaultPair(rt.cfg)
	source := fallbackSource
	languages := catalog.Default()
	if strings.TrimSpace(*from) != "" {
		source, err = languages.Lookup(*from)
		if err != nil {
			fmt.Fprintf(os.Stderr, "--from: %v\n", err)
			return 2
		}
	}
	target, err := languages.Lookup(*to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "--to: %v\n", err)
		return 2
	}

	coord := rt.newCoordinator(nil)
	defer coord.Close()

	status, err := coord.CheckPair(ctx, source, target)
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		rt.logger.Debug().Err(err).Msg("availability check failed")
		if coordinator.KindOf(err) == coordinator.KindProviderUnavailable {
			return 1
		}
		return 2
	}

	out := checkOutput{
		From:    source.Code(),
		To:      target.Code(),
		Status:  status.String(),
		Message: status.Description(),
	}
	if source.IsAuto() {
		out.Probe = coord.ProbeFor(target).Code()
	}

	if *jsonOutput {
		if err := printJSON(os.Stdout, out); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(os.Stdout, "%s -> %s: %s\n", out.From, out.To, out.Status)
	fmt.Fprintln(os.Stdout, out.Message)
	return 0
}

func writeInstalledPairs(w io.Writer, pairs []translation.InstalledPair, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(w, map[string]any{"items": pairs})
	}

	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair.Model, pair.First, pair.Second, formatUTCTimestamp(pair.InstalledAt)})
	}
	return writeTable(w, []string{"MODEL", "LANGUAGE", "LANGUAGE", "INSTALLED_AT"}, rows)
}
