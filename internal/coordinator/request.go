package coordinator

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

// Request is one immutable translation request. A newer submission supersedes it; it is never edited.
type Request struct {
	id     string
	source language.Tag
	target language.Tag
	text   string
}

// NewRequest builds a request. Auto is accepted as source only.
func NewRequest(source, target language.Tag, text string) (Request, error) {
	if source.IsZero() {
		return Request{}, newError(KindInvalidRequest, "source language is required", nil)
	}
	if err := validateTarget(target); err != nil {
		return Request{}, err
	}
	return Request{
		id:     uuid.NewString(),
		source: source,
		target: target,
		text:   text,
	}, nil
}

func (r Request) ID() string           { return r.id }
func (r Request) Source() language.Tag { return r.source }
func (r Request) Target() language.Tag { return r.target }
func (r Request) Text() string         { return r.text }

func (r Request) validate() error {
	if strings.TrimSpace(r.text) == "" {
		return newError(KindInvalidRequest, "text is required", nil)
	}
	if r.source.IsZero() {
		return newError(KindInvalidRequest, "source language is required", nil)
	}
	return validateTarget(r.target)
}

func validateTarget(target language.Tag) error {
	if target.IsZero() {
		return newError(KindInvalidRequest, "target language is required", nil)
	}
	if target.IsAuto() {
		return newError(KindInvalidRequest, "auto-detect cannot be a target language", nil)
	}
	return nil
}
