package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
)

// errPromptInterrupted is returned when the user presses Ctrl-C inside a prompt.
var errPromptInterrupted = errors.New("prompt interrupted")

// Prompter asks the person at the terminal for decisions the coordinator cannot make alone.
type Prompter interface {
	ConfirmDownload(source, target string) (bool, error)
	SelectLanguage(message string, options []catalog.LanguageOption, defaultCode string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) ConfirmDownload(source, target string) (bool, error) {
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("The %s to %s language model is not installed. Download it now?", source, target),
		Default: true,
	}

	var accepted bool
	if err := survey.AskOne(prompt, &accepted, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)); err != nil {
		return false, promptError(err)
	}
	return accepted, nil
}

func (surveyPrompter) SelectLanguage(message string, options []catalog.LanguageOption, defaultCode string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no languages to choose from")
	}

	labels := make([]string, 0, len(options))
	codes := make(map[string]string, len(options))
	defaultLabel := ""
	for _, option := range options {
		label := optionLabel(option)
		labels = append(labels, label)
		codes[label] = option.Code
		if option.Code == defaultCode {
			defaultLabel = label
		}
	}

	prompt := &survey.Select{
		Message:  message,
		Options:  labels,
		PageSize: 12,
	}
	if defaultLabel != "" {
		prompt.Default = defaultLabel
	}

	var selected string
	if err := survey.AskOne(prompt, &selected, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)); err != nil {
		return "", promptError(err)
	}
	return codes[selected], nil
}

func optionLabel(option catalog.LanguageOption) string {
	if option.Native == "" || option.Native == option.Label {
		return fmt.Sprintf("%s (%s)", option.Label, option.Code)
	}
	return fmt.Sprintf("%s / %s (%s)", option.Label, option.Native, option.Code)
}

func promptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errPromptInterrupted
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// interactive reports whether stdin is a terminal a prompt can read from.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
