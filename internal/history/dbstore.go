package history

import (
	"context"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/db"
)

// DBStore persists records in quicklang.translation_records.
type DBStore struct {
	pool *db.Pool
}

func NewDBStore(pool *db.Pool) *DBStore {
	return &DBStore{pool: pool}
}

func (s *DBStore) Insert(ctx context.Context, record Record) (string, error) {
	latency := int(record.Latency.Milliseconds())
	return s.pool.InsertTranslationRecord(ctx, db.InsertTranslationRecordParams{
		RequestID:           record.RequestID,
		RequestedSourceLang: record.RequestedSource,
		ResolvedSourceLang:  optionalString(record.ResolvedSource),
		TargetLang:          record.Target,
		OriginalText:        record.OriginalText,
		TranslatedText:      record.TranslatedText,
		ProviderName:        record.ProviderName,
		ModelName:           optionalString(record.ModelName),
		LatencyMS:           &latency,
	})
}

func (s *DBStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.ListRecentTranslationRecords(ctx, ClampLimit(limit))
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func recordFromRow(row db.TranslationRecord) Record {
	record := Record{
		ID:              row.TranslationRecordUUID,
		RequestID:       row.RequestID,
		RequestedSource: row.RequestedSourceLang,
		Target:          row.TargetLang,
		OriginalText:    row.OriginalText,
		TranslatedText:  row.TranslatedText,
		ProviderName:    row.ProviderName,
		CreatedAt:       row.CreatedAt.UTC(),
	}
	if row.ResolvedSourceLang != nil {
		record.ResolvedSource = *row.ResolvedSourceLang
	}
	if row.ModelName != nil {
		record.ModelName = *row.ModelName
	}
	if row.LatencyMS != nil {
		record.LatencyMS = int64(*row.LatencyMS)
		record.Latency = time.Duration(*row.LatencyMS) * time.Millisecond
	}
	return record
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
