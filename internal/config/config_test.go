package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Environment:            "local",
		LogLevel:               "info",
		DBMinConns:             1,
		DBMaxConns:             8,
		TranslationProvider:    "local",
		TranslationHTTPTimeout: 1,
		ProbeLanguage:          "en",
		DefaultSourceLanguage:  "auto",
		DefaultTargetLanguage:  "ja",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseEnabled() {
		t.Fatalf("did not expect database to be enabled by default")
	}
	if cfg.TranslationProvider != "local" || cfg.DefaultTargetLanguage != "ja" || cfg.ProbeLanguage != "en" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TranslationHTTPTimeout.String() != "2m0s" {
		t.Fatalf("unexpected HTTP timeout: %v", cfg.TranslationHTTPTimeout)
	}
}

func TestValidateRejectsAutoTarget(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DefaultTargetLanguage = "auto"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DEFAULT_TARGET_LANGUAGE") {
		t.Fatalf("expected DEFAULT_TARGET_LANGUAGE error, got %v", err)
	}
}

func TestValidateRejectsAutoProbe(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.ProbeLanguage = "AUTO"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "PROBE_LANGUAGE") {
		t.Fatalf("expected PROBE_LANGUAGE error, got %v", err)
	}
}

func TestValidateRejectsLanguagesOutsideCatalog(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "probe", mutate: func(c *Config) { c.ProbeLanguage = "nl" }, field: "PROBE_LANGUAGE"},
		{name: "default source", mutate: func(c *Config) { c.DefaultSourceLanguage = "sw" }, field: "DEFAULT_SOURCE_LANGUAGE"},
		{name: "default target", mutate: func(c *Config) { c.DefaultTargetLanguage = "nl" }, field: "DEFAULT_TARGET_LANGUAGE"},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tc.field) {
			t.Fatalf("%s: expected %s error, got %v", tc.name, tc.field, err)
		}
	}

	cfg := validConfig()
	cfg.ProbeLanguage = "JA"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected catalog probe to validate, got %v", err)
	}
}

func TestValidateConnectionBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DBMinConns = 9
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected min > max to fail")
	}
}

func TestCORSAllowedOriginsList(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CORSAllowedOrigins = " http://a.test, ,http://b.test,http://a.test "
	origins := cfg.CORSAllowedOriginsList()
	if len(origins) != 2 || origins[0] != "http://a.test" || origins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", origins)
	}
}
