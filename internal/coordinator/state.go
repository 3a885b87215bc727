package coordinator

import (
	"time"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

// Phase is the coordinator's position in the request lifecycle.
type Phase int

const (
	Idle Phase = iota
	CheckingAvailability
	AwaitingDownloadConsent
	Downloading
	Translating
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CheckingAvailability:
		return "checking_availability"
	case AwaitingDownloadConsent:
		return "awaiting_download_consent"
	case Downloading:
		return "downloading"
	case Translating:
		return "translating"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal reports whether no further transition happens without a new call.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed
}

// InFlight reports whether a request is being worked on or waiting for consent.
func (p Phase) InFlight() bool {
	return p != Idle && !p.Terminal()
}

// Result is what a completed request produced.
type Result struct {
	RequestID       string
	OriginalText    string
	RequestedSource language.Tag
	Text            string
	Source          language.Tag // resolved by the provider; zero when unknown
	Target          language.Tag
	ProviderName    string
	ModelName       string
	Latency         time.Duration
}

// State is a snapshot of the coordinator. Request is nil in Idle; Result is set only in Completed
// and Err only in Failed.
type State struct {
	Phase      Phase
	Generation uint64
	Request    *Request
	Result     *Result
	Err        *Error
}
