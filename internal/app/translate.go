package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/language"
	"github.com/Tetsuya81/QuickLang/internal/reader"
)

// pickLanguage is the flag value that opens the interactive language picker.
const pickLanguage = "?"

var (
	errDownloadDeclined = errors.New("language model download declined")
	errConsentRequired  = errors.New("the language model must be downloaded first; rerun with --yes to accept")
	errRequestCancelled = errors.New("translation cancelled")
)

type translateInput struct {
	Args []string
	File string
	URL  string
}

type textFetcher func(ctx context.Context, pageURL string) (string, error)

type translateOutput struct {
	RequestID      string `json:"request_id"`
	Source         string `json:"source"`
	ResolvedSource string `json:"resolved_source,omitempty"`
	Target         string `json:"target"`
	Text           string `json:"text"`
	Provider       string `json:"provider"`
	Model          string `json:"model,omitempty"`
	LatencyMS      int64  `json:"latency_ms"`
}

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	envLoader := cli.AddEnvFlag(fs, ".env", "Path to .env file")
	from := fs.String("from", "", "Source language code, auto, or ? to pick (default from DEFAULT_SOURCE_LANGUAGE)")
	to := fs.String("to", "", "Target language code, or ? to pick (default from DEFAULT_TARGET_LANGUAGE)")
	file := fs.String("file", "", "Read text from a file, - for stdin")
	pageURL := fs.String("url", "", "Translate the readable text of a web page")
	providerName := fs.String("provider", "", "Translation provider (default from TRANSLATION_PROVIDER)")
	assumeYes := fs.Bool("yes", false, "Download missing language models without asking")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall timeout including model download")
	jsonOutput := fs.Bool("json", false, "Print the result as JSON")
	quiet := fs.Bool("quiet", false, "Do not print progress to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	input := translateInput{Args: fs.Args(), File: *file, URL: *pageURL}
	if err := input.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	rt, err := openRuntime(ctx, envLoader, *providerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer rt.close()

	var prompter Prompter
	if interactive() {
		prompter = surveyPrompter{}
	}

	defaultSource, defaultTarget := defaultPair(rt.cfg)
	source, target, err := resolvePair(catalog.Default(), *from, *to, defaultSource, defaultTarget, prompter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	text, err := input.resolve(ctx, os.Stdin, reader.FetchText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	sinks := make([]coordinator.Sink, 0, 2)
	if !*jsonOutput {
		sinks = append(sinks, coordinator.NewWriterSink(os.Stdout))
	}
	if rt.history != nil {
		sinks = append(sinks, history.NewRecorder(rt.history))
	}

	var progress func(coordinator.State)
	if !*quiet {
		progress = progressPrinter(os.Stderr)
	}
	coord := rt.newCoordinator(progress, sinks...)

	req, err := coordinator.NewRequest(source, target, text)
	if err != nil {
		coord.Close()
		fmt.Fprintln(os.Stderr, userMessage(err))
		return 2
	}

	state, err := translateFlow(ctx, coord, req, prompter, *assumeYes)
	// Close waits for the sinks, so the translation is on stdout before we return.
	coord.Close()
	if err != nil {
		rt.logger.Debug().Err(err).Str("request_id", req.ID()).Msg("translate command failed")
		fmt.Fprintln(os.Stderr, userMessage(err))
		if coordinator.KindOf(err) == coordinator.KindInvalidRequest {
			return 2
		}
		return 1
	}

	if *jsonOutput {
		if err := printJSON(os.Stdout, buildTranslateOutput(state)); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return 1
		}
	}
	return 0
}

// translateFlow submits req and drives it to a terminal state, asking prompter for download
// consent when needed. A nil prompter without assumeYes refuses the download.
func translateFlow(ctx context.Context, coord *coordinator.Coordinator, req coordinator.Request, prompter Prompter, assumeYes bool) (coordinator.State, error) {
	if err := coord.Submit(req); err != nil {
		return coord.State(), err
	}

	for {
		state, err := coord.Wait(ctx, func(state coordinator.State) bool {
			if state.Request == nil || state.Request.ID() != req.ID() {
				return true
			}
			switch state.Phase {
			case coordinator.AwaitingDownloadConsent, coordinator.Completed, coordinator.Failed:
				return true
			default:
				return false
			}
		})
		if err != nil {
			coord.Cancel()
			return state, errRequestCancelled
		}
		if state.Request == nil || state.Request.ID() != req.ID() {
			return state, errRequestCancelled
		}

		switch state.Phase {
		case coordinator.Completed:
			return state, nil
		case coordinator.Failed:
			return state, state.Err
		case coordinator.AwaitingDownloadConsent:
			accepted, err := askConsent(prompter, assumeYes, req)
			if err != nil || !accepted {
				coord.Cancel()
				if err == nil {
					err = errDownloadDeclined
				}
				return coord.State(), err
			}
			if err := coord.ConfirmDownload(); err != nil {
				return coord.State(), err
			}
		}
	}
}

func askConsent(prompter Prompter, assumeYes bool, req coordinator.Request) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if prompter == nil {
		return false, errConsentRequired
	}
	return prompter.ConfirmDownload(displayName(req.Source()), displayName(req.Target()))
}

func resolvePair(languages *catalog.Catalog, rawSource, rawTarget string, defaultSource, defaultTarget language.Tag, prompter Prompter) (language.Tag, language.Tag, error) {
	source, err := resolveLanguage(languages, rawSource, defaultSource, "Translate from", languages.SourceOptions(), prompter)
	if err != nil {
		return language.Tag{}, language.Tag{}, fmt.Errorf("--from: %w", err)
	}
	target, err := resolveLanguage(languages, rawTarget, defaultTarget, "Translate to", languages.TargetOptions(), prompter)
	if err != nil {
		return language.Tag{}, language.Tag{}, fmt.Errorf("--to: %w", err)
	}
	if target.IsAuto() {
		return language.Tag{}, language.Tag{}, fmt.Errorf("--to: auto-detect cannot be a target language")
	}
	return source, target, nil
}

func resolveLanguage(languages *catalog.Catalog, raw string, fallback language.Tag, message string, options []catalog.LanguageOption, prompter Prompter) (language.Tag, error) {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "":
		return fallback, nil
	case pickLanguage:
		if prompter == nil {
			return language.Tag{}, fmt.Errorf("the language picker needs an interactive terminal")
		}
		code, err := prompter.SelectLanguage(message, options, fallback.Code())
		if err != nil {
			return language.Tag{}, err
		}
		return languages.Lookup(code)
	default:
		return languages.Lookup(trimmed)
	}
}

func (in translateInput) validate() error {
	sources := 0
	if len(in.Args) > 0 {
		sources++
	}
	if strings.TrimSpace(in.File) != "" {
		sources++
	}
	if strings.TrimSpace(in.URL) != "" {
		sources++
	}
	switch sources {
	case 0:
		return fmt.Errorf("provide text to translate, --file or --url")
	case 1:
		return nil
	default:
		return fmt.Errorf("use only one of text arguments, --file or --url")
	}
}

func (in translateInput) resolve(ctx context.Context, stdin io.Reader, fetch textFetcher) (string, error) {
	switch {
	case strings.TrimSpace(in.File) != "":
		return reader.ReadFile(strings.TrimSpace(in.File), stdin)
	case strings.TrimSpace(in.URL) != "":
		return fetch(ctx, strings.TrimSpace(in.URL))
	default:
		return strings.Join(in.Args, " "), nil
	}
}

func buildTranslateOutput(state coordinator.State) translateOutput {
	result := state.Result
	if result == nil {
		return translateOutput{}
	}
	out := translateOutput{
		RequestID: result.RequestID,
		Source:    result.RequestedSource.Code(),
		Target:    result.Target.Code(),
		Text:      result.Text,
		Provider:  result.ProviderName,
		Model:     result.ModelName,
		LatencyMS: result.Latency.Milliseconds(),
	}
	if !result.Source.IsZero() {
		out.ResolvedSource = result.Source.Code()
	}
	return out
}

func progressPrinter(w io.Writer) func(coordinator.State) {
	return func(state coordinator.State) {
		switch state.Phase {
		case coordinator.CheckingAvailability:
			fmt.Fprintln(w, "Checking language model...")
		case coordinator.Downloading:
			fmt.Fprintln(w, "Downloading language model...")
		case coordinator.Translating:
			fmt.Fprintln(w, "Translating...")
		}
	}
}

func displayName(tag language.Tag) string {
	name, err := catalog.Default().DisplayName(tag)
	if err != nil {
		return tag.Code()
	}
	return name
}
