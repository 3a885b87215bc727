package db

import (
	"context"
	"fmt"
)

// InsertTranslationRecordParams controls translation history inserts.
type InsertTranslationRecordParams struct {
	RequestID           string
	RequestedSourceLang string
	ResolvedSourceLang  *string
	TargetLang          string
	OriginalText        string
	TranslatedText      string
	ProviderName        string
	ModelName           *string
	LatencyMS           *int
}

func (p *Pool) InsertTranslationRecord(ctx context.Context, row InsertTranslationRecordParams) (string, error) {
	const q = `
INSERT INTO quicklang.translation_records (
	request_id,
	requested_source_lang,
	resolved_source_lang,
	target_lang,
	original_text,
	translated_text,
	provider_name,
	model_name,
	latency_ms
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING translation_record_uuid::text
`

	var recordUUID string
	if err := p.QueryRow(
		ctx,
		q,
		row.RequestID,
		row.RequestedSourceLang,
		row.ResolvedSourceLang,
		row.TargetLang,
		row.OriginalText,
		row.TranslatedText,
		row.ProviderName,
		row.ModelName,
		row.LatencyMS,
	).Scan(&recordUUID); err != nil {
		return "", fmt.Errorf("insert translation record: %w", err)
	}
	return recordUUID, nil
}

func (p *Pool) ListRecentTranslationRecords(ctx context.Context, limit int) ([]TranslationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
SELECT
	r.translation_record_id,
	r.translation_record_uuid::text,
	r.request_id,
	r.requested_source_lang,
	r.resolved_source_lang,
	r.target_lang,
	r.original_text,
	r.translated_text,
	r.provider_name,
	r.model_name,
	r.latency_ms,
	r.created_at
FROM quicklang.translation_records r
ORDER BY r.created_at DESC, r.translation_record_id DESC
LIMIT $1
`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query translation records: %w", err)
	}
	defer rows.Close()

	items := make([]TranslationRecord, 0, limit)
	for rows.Next() {
		var row TranslationRecord
		if err := rows.Scan(
			&row.TranslationRecordID,
			&row.TranslationRecordUUID,
			&row.RequestID,
			&row.RequestedSourceLang,
			&row.ResolvedSourceLang,
			&row.TargetLang,
			&row.OriginalText,
			&row.TranslatedText,
			&row.ProviderName,
			&row.ModelName,
			&row.LatencyMS,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan translation record row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation records: %w", err)
	}
	return items, nil
}
