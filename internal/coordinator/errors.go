package coordinator

import (
	"errors"
	"fmt"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
)

// ErrorKind classifies why a request was rejected or failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidRequest
	KindUnsupportedLanguagePair
	KindModelDownloadFailed
	KindTranslationFailed
	KindProviderUnavailable
	KindUnknownLanguage
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnsupportedLanguagePair:
		return "unsupported_language_pair"
	case KindModelDownloadFailed:
		return "model_download_failed"
	case KindTranslationFailed:
		return "translation_failed"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindUnknownLanguage:
		return "unknown_language"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a classified failure. Message carries the provider detail when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrInvalidRequest          = &Error{Kind: KindInvalidRequest}
	ErrUnsupportedLanguagePair = &Error{Kind: KindUnsupportedLanguagePair}
	ErrModelDownloadFailed     = &Error{Kind: KindModelDownloadFailed}
	ErrTranslationFailed       = &Error{Kind: KindTranslationFailed}
	ErrProviderUnavailable     = &Error{Kind: KindProviderUnavailable}
	ErrUnknownLanguage         = &Error{Kind: KindUnknownLanguage}

	// ErrNoPendingDownload is returned by ConfirmDownload outside AwaitingDownloadConsent.
	ErrNoPendingDownload = errors.New("no download is awaiting consent")
)

func newError(kind ErrorKind, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	label := kindLabels[e.Kind]
	if label == "" {
		label = "coordinator error"
	}
	if e.Message == "" {
		return label
	}
	return fmt.Sprintf("%s: %s", label, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when target is one of the bare Err* values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// UserMessage is the text shown to the person who asked for the translation.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindInvalidRequest:
		return "Enter some text and choose a target language."
	case KindUnsupportedLanguagePair:
		return "This language pair cannot be translated. Try choosing a different language."
	case KindModelDownloadFailed:
		return "Failed to download the language model. Check your network connection."
	case KindTranslationFailed:
		if e.Message != "" {
			return "An error occurred while translating: " + e.Message
		}
		return "An error occurred while translating."
	case KindProviderUnavailable:
		return "Could not check whether this language pair is available."
	case KindUnknownLanguage:
		return "This language is not in the list of supported languages."
	default:
		return e.Error()
	}
}

var kindLabels = map[ErrorKind]string{
	KindInvalidRequest:          "invalid request",
	KindUnsupportedLanguagePair: "unsupported language pair",
	KindModelDownloadFailed:     "model download failed",
	KindTranslationFailed:       "translation failed",
	KindProviderUnavailable:     "provider unavailable",
	KindUnknownLanguage:         "unknown language",
}

// KindOf classifies err. Catalog lookup misses map to KindUnknownLanguage.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var coordErr *Error
	if errors.As(err, &coordErr) {
		return coordErr.Kind
	}
	if errors.Is(err, catalog.ErrUnknownLanguage) {
		return KindUnknownLanguage
	}
	return KindUnknown
}
