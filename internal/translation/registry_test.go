package translation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tetsuya81/QuickLang/internal/config"
	"github.com/Tetsuya81/QuickLang/internal/language"
)

type namedProvider struct {
	name string
}

func (p namedProvider) Name() string { return p.name }

func (p namedProvider) CheckAvailability(context.Context, language.Tag, language.Tag) (Availability, error) {
	return Installed, nil
}

func (p namedProvider) PrepareModel(context.Context, language.Tag, language.Tag) error { return nil }

func (p namedProvider) Translate(_ context.Context, req TranslateRequest) (*TranslateResponse, error) {
	return &TranslateResponse{Text: req.Text, ProviderName: p.name}, nil
}

func (p namedProvider) InvalidateSession() {}

func TestRegistryResolvesDefault(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(" Local ")
	if registry.DefaultProvider() != "local" {
		t.Fatalf("unexpected default provider: %q", registry.DefaultProvider())
	}
	if err := registry.Register(namedProvider{name: "local"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(namedProvider{name: "Echo"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	provider, err := registry.Provider("")
	if err != nil || provider.Name() != "local" {
		t.Fatalf("unexpected default resolution: %v err=%v", provider, err)
	}
	provider, err = registry.Provider("ECHO")
	if err != nil || provider.Name() != "Echo" {
		t.Fatalf("unexpected named resolution: %v err=%v", provider, err)
	}
	if names := registry.ProviderNames(); len(names) != 2 || names[0] != "echo" || names[1] != "local" {
		t.Fatalf("unexpected provider names: %v", names)
	}
}

func TestRegistryErrors(t *testing.T) {
	t.Parallel()

	registry := NewRegistry("")
	if _, err := registry.Provider(""); err == nil {
		t.Fatalf("expected error for empty registry")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	if err := registry.Register(namedProvider{name: "  "}); err == nil {
		t.Fatalf("expected error for blank provider name")
	}

	_ = registry.Register(namedProvider{name: "local"})
	_, err := registry.Provider("google")
	if err == nil || !strings.Contains(err.Error(), "available: local") {
		t.Fatalf("expected available provider list in error, got %v", err)
	}
}

func TestMemoryModelStoreOrdersPairs(t *testing.T) {
	t.Parallel()

	store := NewMemoryModelStore()
	ctx := context.Background()
	_ = store.MarkPairInstalled(ctx, "m", "ja", "en")
	_ = store.MarkPairInstalled(ctx, "m", "en", "ja")
	_ = store.MarkPairInstalled(ctx, "m", "de", "en")

	pairs, err := store.ListInstalledPairs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected duplicate reversed pair to collapse, got %+v", pairs)
	}
	if pairs[0].First != "de" || pairs[1].First != "en" || pairs[1].Second != "ja" {
		t.Fatalf("unexpected pair order: %+v", pairs)
	}

	installed, _ := store.IsPairInstalled(ctx, "other-model", "en", "ja")
	if installed {
		t.Fatalf("pairs must be scoped to their model")
	}
}

func TestAvailabilityString(t *testing.T) {
	t.Parallel()

	if Installed.String() != "installed" || DownloadRequired.String() != "download_required" || Unsupported.String() != "unsupported" {
		t.Fatalf("unexpected availability names")
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		TranslationProvider:    "local",
		TranslationEndpoint:    "http://translator:9000/v1",
		TranslationModel:       "custom/model",
		TranslationHTTPTimeout: time.Minute,
	}
	registry, err := NewRegistryFromConfig(cfg, NewMemoryModelStore(), zerolog.Nop())
	if err != nil {
		t.Fatalf("registry from config: %v", err)
	}

	provider, err := registry.Provider("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	local, ok := provider.(*LocalProvider)
	if !ok {
		t.Fatalf("expected *LocalProvider, got %T", provider)
	}
	if local.ModelName() != "custom/model" || local.chatURL != "http://translator:9000/v1/chat/completions" {
		t.Fatalf("unexpected provider settings: model=%q url=%q", local.ModelName(), local.chatURL)
	}

	if _, err := NewRegistryFromConfig(nil, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected nil config to fail")
	}
	cfg.TranslationProvider = "remote"
	registry, err = NewRegistryFromConfig(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("registry from config: %v", err)
	}
	if _, err := registry.Provider(""); err == nil || !strings.Contains(err.Error(), "available: local") {
		t.Fatalf("expected unknown default provider error, got %v", err)
	}
}
