package translation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/globaltime"
)

// InstalledPair records that a model was prepared for a language pair. Pairs are undirected.
type InstalledPair struct {
	Model       string    `json:"model"`
	First       string    `json:"first"`
	Second      string    `json:"second"`
	InstalledAt time.Time `json:"installed_at"`
}

// ModelStore tracks which language pairs have a prepared model.
type ModelStore interface {
	IsPairInstalled(ctx context.Context, model, first, second string) (bool, error)
	MarkPairInstalled(ctx context.Context, model, first, second string) error
	ListInstalledPairs(ctx context.Context) ([]InstalledPair, error)
}

// MemoryModelStore keeps installed pairs for the lifetime of the process.
type MemoryModelStore struct {
	mu    sync.RWMutex
	pairs map[pairKey]InstalledPair
}

type pairKey struct {
	model  string
	first  string
	second string
}

func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{pairs: make(map[pairKey]InstalledPair)}
}

func (s *MemoryModelStore) IsPairInstalled(_ context.Context, model, first, second string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pairs[newPairKey(model, first, second)]
	return ok, nil
}

func (s *MemoryModelStore) MarkPairInstalled(_ context.Context, model, first, second string) error {
	key := newPairKey(model, first, second)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pairs[key]; exists {
		return nil
	}
	s.pairs[key] = InstalledPair{
		Model:       key.model,
		First:       key.first,
		Second:      key.second,
		InstalledAt: globaltime.UTC(),
	}
	return nil
}

func (s *MemoryModelStore) ListInstalledPairs(_ context.Context) ([]InstalledPair, error) {
	s.mu.RLock()
	items := make([]InstalledPair, 0, len(s.pairs))
	for _, pair := range s.pairs {
		items = append(items, pair)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Model != items[j].Model {
			return items[i].Model < items[j].Model
		}
		if items[i].First != items[j].First {
			return items[i].First < items[j].First
		}
		return items[i].Second < items[j].Second
	})
	return items, nil
}

// OrderPair returns the two codes in a stable order so that a pair and its reverse share one record.
func OrderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func newPairKey(model, first, second string) pairKey {
	first, second = OrderPair(first, second)
	return pairKey{model: model, first: first, second: second}
}
