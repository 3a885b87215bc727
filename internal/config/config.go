package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL is optional; without it installed models and history live in memory.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"NP_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"NP_DB_MAX_CONNS" default:"8"`

	TranslationProvider    string        `envconfig:"TRANSLATION_PROVIDER" default:"local"`
	TranslationEndpoint    string        `envconfig:"TRANSLATION_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	TranslationModel       string        `envconfig:"TRANSLATION_MODEL" default:"tencent/HY-MT1.5-7B"`
	TranslationHTTPTimeout time.Duration `envconfig:"TRANSLATION_HTTP_TIMEOUT" default:"2m"`

	ProbeLanguage         string `envconfig:"PROBE_LANGUAGE" default:"en"`
	DefaultSourceLanguage string `envconfig:"DEFAULT_SOURCE_LANGUAGE" default:"auto"`
	DefaultTargetLanguage string `envconfig:"DEFAULT_TARGET_LANGUAGE" default:"ja"`

	HistoryEnabled     bool   `envconfig:"HISTORY_ENABLED" default:"true"`
	APITokenHash       string `envconfig:"API_TOKEN_HASH" default:""`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("NP_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("NP_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("NP_DB_MIN_CONNS (%d) cannot exceed NP_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.TranslationProvider) == "" {
		return fmt.Errorf("TRANSLATION_PROVIDER is required")
	}
	if c.TranslationHTTPTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_HTTP_TIMEOUT must be > 0")
	}

	// Language settings must name catalog languages, since the provider only serves those.
	languages := catalog.Default()
	probe, err := languages.Lookup(c.ProbeLanguage)
	if err != nil {
		return fmt.Errorf("PROBE_LANGUAGE: %w", err)
	}
	if probe.IsAuto() {
		return fmt.Errorf("PROBE_LANGUAGE must be a concrete language")
	}
	if _, err := languages.Lookup(c.DefaultSourceLanguage); err != nil {
		return fmt.Errorf("DEFAULT_SOURCE_LANGUAGE: %w", err)
	}
	target, err := languages.Lookup(c.DefaultTargetLanguage)
	if err != nil {
		return fmt.Errorf("DEFAULT_TARGET_LANGUAGE: %w", err)
	}
	if target.IsAuto() {
		return fmt.Errorf("DEFAULT_TARGET_LANGUAGE cannot be auto")
	}
	return nil
}

// DatabaseEnabled reports whether a database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
