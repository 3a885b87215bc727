package db

import (
	"context"
	"fmt"
)

func (p *Pool) IsLanguagePairInstalled(ctx context.Context, model, firstLang, secondLang string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM quicklang.language_models m
	WHERE m.model_name = $1
	  AND m.first_lang = $2
	  AND m.second_lang = $3
)
`

	var installed bool
	if err := p.QueryRow(ctx, q, model, firstLang, secondLang).Scan(&installed); err != nil {
		return false, fmt.Errorf("query language model: %w", err)
	}
	return installed, nil
}

func (p *Pool) InsertLanguageModel(ctx context.Context, model, firstLang, secondLang string) error {
	const q = `
INSERT INTO quicklang.language_models (model_name, first_lang, second_lang)
VALUES ($1, $2, $3)
ON CONFLICT (model_name, first_lang, second_lang) DO NOTHING
`

	if _, err := p.Exec(ctx, q, model, firstLang, secondLang); err != nil {
		return fmt.Errorf("insert language model: %w", err)
	}
	return nil
}

func (p *Pool) ListLanguageModels(ctx context.Context) ([]LanguageModel, error) {
	const q = `
SELECT
	m.language_model_id,
	m.model_name,
	m.first_lang,
	m.second_lang,
	m.installed_at
FROM quicklang.language_models m
ORDER BY m.model_name, m.first_lang, m.second_lang
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query language models: %w", err)
	}
	defer rows.Close()

	items := make([]LanguageModel, 0, 16)
	for rows.Next() {
		var row LanguageModel
		if err := rows.Scan(
			&row.LanguageModelID,
			&row.ModelName,
			&row.FirstLang,
			&row.SecondLang,
			&row.InstalledAt,
		); err != nil {
			return nil, fmt.Errorf("scan language model row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate language models: %w", err)
	}
	return items, nil
}
