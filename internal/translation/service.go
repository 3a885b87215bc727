package translation

import (
	"context"
	"errors"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

var (
	// ErrProviderUnavailable wraps transport or platform failures of an availability check.
	ErrProviderUnavailable = errors.New("translation provider unavailable")
	// ErrDownloadFailed wraps failures to prepare a language model.
	ErrDownloadFailed = errors.New("language model download failed")
	// ErrTranslationFailed wraps runtime failures of a translation call.
	ErrTranslationFailed = errors.New("translation failed")
)

// Availability is the provider's view of a language pair.
type Availability int

const (
	Unsupported Availability = iota
	DownloadRequired
	Installed
)

func (a Availability) String() string {
	switch a {
	case Installed:
		return "installed"
	case DownloadRequired:
		return "download_required"
	default:
		return "unsupported"
	}
}

func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Description is the user-facing sentence for a status.
func (a Availability) Description() string {
	switch a {
	case Installed:
		return "The language model is installed. Ready to translate."
	case DownloadRequired:
		return "The language model needs to be downloaded before translating."
	default:
		return "This language pair is not supported."
	}
}

// Provider checks, prepares and executes translations for language pairs.
type Provider interface {
	Name() string
	// CheckAvailability reports the model state for a concrete pair. Auto is not a concrete source.
	CheckAvailability(ctx context.Context, source, target language.Tag) (Availability, error)
	// PrepareModel downloads or otherwise installs what the pair needs.
	PrepareModel(ctx context.Context, source, target language.Tag) error
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	// InvalidateSession abandons every call of the current session. Best effort.
	InvalidateSession()
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text   string
	Source language.Tag // may be language.Auto
	Target language.Tag
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	Source       language.Tag // resolved source; zero when detection failed
	Target       language.Tag
	ProviderName string
	ModelName    string
	Latency      time.Duration
}
