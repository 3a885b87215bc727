// Package history records completed translations so they can be listed later.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/globaltime"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200

	// DefaultMemoryCapacity is how many records MemoryStore keeps before dropping the oldest.
	DefaultMemoryCapacity = 500
)

type Record struct {
	ID              string        `json:"id"`
	RequestID       string        `json:"request_id"`
	RequestedSource string        `json:"requested_source"`
	ResolvedSource  string        `json:"resolved_source,omitempty"`
	Target          string        `json:"target"`
	OriginalText    string        `json:"original_text"`
	TranslatedText  string        `json:"translated_text"`
	ProviderName    string        `json:"provider"`
	ModelName       string        `json:"model,omitempty"`
	Latency         time.Duration `json:"-"`
	LatencyMS       int64         `json:"latency_ms"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Store interface {
	Insert(ctx context.Context, record Record) (string, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// ClampLimit maps a requested page size onto [1, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// Recorder is a coordinator sink that writes every completed translation to a Store.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

var _ coordinator.Sink = (*Recorder)(nil)

func (r *Recorder) Deliver(ctx context.Context, result coordinator.Result) error {
	record := Record{
		RequestID:       result.RequestID,
		RequestedSource: result.RequestedSource.Code(),
		Target:          result.Target.Code(),
		OriginalText:    result.OriginalText,
		TranslatedText:  result.Text,
		ProviderName:    result.ProviderName,
		ModelName:       result.ModelName,
		Latency:         result.Latency,
		LatencyMS:       result.Latency.Milliseconds(),
	}
	if !result.Source.IsZero() && !result.Source.IsAuto() {
		record.ResolvedSource = result.Source.Code()
	}

	if _, err := r.store.Insert(ctx, record); err != nil {
		return fmt.Errorf("record translation %s: %w", result.RequestID, err)
	}
	return nil
}

// MemoryStore keeps the most recent records in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	records  []Record
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Insert(_ context.Context, record Record) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = globaltime.UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	if overflow := len(s.records) - s.capacity; overflow > 0 {
		s.records = append(s.records[:0:0], s.records[overflow:]...)
	}
	return record.ID, nil
}

// ListRecent returns records newest first.
func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]Record, error) {
	limit = ClampLimit(limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
