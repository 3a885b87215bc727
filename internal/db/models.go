package db

import "time"

// LanguageModel maps quicklang.language_models. One row per prepared (model, pair); pairs are stored
// with first_lang < second_lang.
type LanguageModel struct {
	LanguageModelID int64     `gorm:"column:language_model_id;primaryKey;autoIncrement"`
	ModelName       string    `gorm:"column:model_name;type:text;not null"`
	FirstLang       string    `gorm:"column:first_lang;type:text;not null"`
	SecondLang      string    `gorm:"column:second_lang;type:text;not null"`
	InstalledAt     time.Time `gorm:"column:installed_at;type:timestamptz;not null;default:now()"`
}

func (LanguageModel) TableName() string { return "quicklang.language_models" }

// TranslationRecord maps quicklang.translation_records.
type TranslationRecord struct {
	TranslationRecordID   int64     `gorm:"column:translation_record_id;primaryKey;autoIncrement"`
	TranslationRecordUUID string    `gorm:"column:translation_record_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	RequestID             string    `gorm:"column:request_id;type:text;not null"`
	RequestedSourceLang   string    `gorm:"column:requested_source_lang;type:text;not null"`
	ResolvedSourceLang    *string   `gorm:"column:resolved_source_lang;type:text"`
	TargetLang            string    `gorm:"column:target_lang;type:text;not null"`
	OriginalText          string    `gorm:"column:original_text;type:text;not null"`
	TranslatedText        string    `gorm:"column:translated_text;type:text;not null"`
	ProviderName          string    `gorm:"column:provider_name;type:text;not null"`
	ModelName             *string   `gorm:"column:model_name;type:text"`
	LatencyMS             *int      `gorm:"column:latency_ms;type:integer"`
	CreatedAt             time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (TranslationRecord) TableName() string { return "quicklang.translation_records" }

func autoMigrateModels() []any {
	return []any{
		&LanguageModel{},
		&TranslationRecord{},
	}
}
