package translation

import (
	"context"
	"fmt"

	"github.com/Tetsuya81/QuickLang/internal/db"
)

// DBModelStore persists installed pairs in quicklang.language_models.
type DBModelStore struct {
	pool *db.Pool
}

func NewDBModelStore(pool *db.Pool) *DBModelStore {
	return &DBModelStore{pool: pool}
}

func (s *DBModelStore) IsPairInstalled(ctx context.Context, model, first, second string) (bool, error) {
	if s == nil || s.pool == nil {
		return false, fmt.Errorf("model store is not initialized")
	}
	first, second = OrderPair(first, second)
	return s.pool.IsLanguagePairInstalled(ctx, model, first, second)
}

func (s *DBModelStore) MarkPairInstalled(ctx context.Context, model, first, second string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("model store is not initialized")
	}
	first, second = OrderPair(first, second)
	return s.pool.InsertLanguageModel(ctx, model, first, second)
}

func (s *DBModelStore) ListInstalledPairs(ctx context.Context) ([]InstalledPair, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("model store is not initialized")
	}
	rows, err := s.pool.ListLanguageModels(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]InstalledPair, 0, len(rows))
	for _, row := range rows {
		items = append(items, InstalledPair{
			Model:       row.ModelName,
			First:       row.FirstLang,
			Second:      row.SecondLang,
			InstalledAt: row.InstalledAt,
		})
	}
	return items, nil
}
