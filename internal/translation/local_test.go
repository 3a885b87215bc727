package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

func fixedDetector(code string) Detector {
	return func(string) (language.Tag, bool) {
		if code == "" {
			return language.Tag{}, false
		}
		return language.MustParse(code), true
	}
}

func newChatServer(t *testing.T, reply string, prompts *[]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"id": "other"}, {"id": DefaultLocalModel}},
			})
		case "/v1/chat/completions":
			var req localChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if prompts != nil {
				*prompts = append(*prompts, req.Messages[0].Content)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"content": reply}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestCheckAvailability(t *testing.T) {
	t.Parallel()

	store := NewMemoryModelStore()
	provider := NewLocalProvider(LocalOptions{Store: store})
	ctx := context.Background()
	en, ja := language.MustParse("en"), language.MustParse("ja")

	status, err := provider.CheckAvailability(ctx, en, ja)
	if err != nil || status != DownloadRequired {
		t.Fatalf("unexpected status before install: %v err=%v", status, err)
	}

	if err := store.MarkPairInstalled(ctx, DefaultLocalModel, "ja", "en"); err != nil {
		t.Fatalf("mark installed: %v", err)
	}
	status, err = provider.CheckAvailability(ctx, en, ja)
	if err != nil || status != Installed {
		t.Fatalf("expected reversed pair to count as installed: %v err=%v", status, err)
	}

	if status, _ := provider.CheckAvailability(ctx, en, language.MustParse("sw")); status != Unsupported {
		t.Fatalf("expected unlisted target to be unsupported, got %v", status)
	}
	if status, _ := provider.CheckAvailability(ctx, en, en); status != Unsupported {
		t.Fatalf("expected identical pair to be unsupported, got %v", status)
	}
	if _, err := provider.CheckAvailability(ctx, language.Auto, ja); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable for Auto source, got %v", err)
	}
}

func TestPrepareModelRecordsPair(t *testing.T) {
	t.Parallel()

	server := newChatServer(t, "", nil)
	defer server.Close()

	store := NewMemoryModelStore()
	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL, Store: store})
	ctx := context.Background()
	en, fr := language.MustParse("en"), language.MustParse("fr")

	if err := provider.PrepareModel(ctx, en, fr); err != nil {
		t.Fatalf("prepare model: %v", err)
	}
	pairs, err := store.ListInstalledPairs(ctx)
	if err != nil {
		t.Fatalf("list pairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].First != "en" || pairs[0].Second != "fr" || pairs[0].Model != DefaultLocalModel {
		t.Fatalf("unexpected installed pairs: %+v", pairs)
	}
	if status, _ := provider.CheckAvailability(ctx, fr, en); status != Installed {
		t.Fatalf("expected installed after prepare, got %v", status)
	}
}

func TestPrepareModelFailsWhenModelMissing(t *testing.T) {
	t.Parallel()

	server := newChatServer(t, "", nil)
	defer server.Close()

	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL, Model: "missing/model"})
	err := provider.PrepareModel(context.Background(), language.MustParse("en"), language.MustParse("de"))
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing/model") {
		t.Fatalf("expected model name in error, got %v", err)
	}
}

func TestTranslateUsesDetectedSource(t *testing.T) {
	t.Parallel()

	var prompts []string
	server := newChatServer(t, " Bonjour le monde ", &prompts)
	defer server.Close()

	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL, Detector: fixedDetector("en")})
	resp, err := provider.Translate(context.Background(), TranslateRequest{
		Text:   "Hello world",
		Source: language.Auto,
		Target: language.MustParse("fr"),
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.Text != "Bonjour le monde" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Source.Code() != "en" || resp.ProviderName != "local" || resp.ModelName != DefaultLocalModel {
		t.Fatalf("unexpected response metadata: %+v", resp)
	}
	if len(prompts) != 1 || !strings.HasPrefix(prompts[0], "Translate the following segment into French") {
		t.Fatalf("unexpected prompt: %q", prompts)
	}
}

func TestTranslateChineseTemplate(t *testing.T) {
	t.Parallel()

	var prompts []string
	server := newChatServer(t, "你好", &prompts)
	defer server.Close()

	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL, Detector: fixedDetector("")})
	_, err := provider.Translate(context.Background(), TranslateRequest{
		Text:   "Hello",
		Source: language.Auto,
		Target: language.MustParse("zh-Hant"),
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], "繁体中文") {
		t.Fatalf("expected zh template with traditional label, got %q", prompts)
	}
}

func TestTranslateSurfacesEndpointMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model is loading"}}`))
	}))
	defer server.Close()

	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL})
	_, err := provider.Translate(context.Background(), TranslateRequest{
		Text:   "Hello",
		Source: language.MustParse("en"),
		Target: language.MustParse("ja"),
	})
	if !errors.Is(err, ErrTranslationFailed) {
		t.Fatalf("expected ErrTranslationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "model is loading") {
		t.Fatalf("expected endpoint message in error, got %v", err)
	}
}

func TestInvalidateSessionAbortsInFlightCall(t *testing.T) {
	t.Parallel()

	var started atomic.Bool
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started.Store(true)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewLocalProvider(LocalOptions{Endpoint: server.URL})
	errCh := make(chan error, 1)
	go func() {
		_, err := provider.Translate(context.Background(), TranslateRequest{
			Text:   "Hello",
			Source: language.MustParse("en"),
			Target: language.MustParse("ja"),
		})
		errCh <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !started.Load() {
		if time.Now().After(deadline) {
			t.Fatalf("request never reached the endpoint")
		}
		time.Sleep(5 * time.Millisecond)
	}
	provider.InvalidateSession()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrTranslationFailed) {
			t.Fatalf("expected ErrTranslationFailed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("translate did not return after session invalidation")
	}
}

func TestEndpointURLs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                DefaultLocalEndpoint + "/chat/completions",
		"localhost:9000":                  "http://localhost:9000/v1/chat/completions",
		"http://host/v1/":                 "http://host/v1/chat/completions",
		"http://host/api":                 "http://host/api/v1/chat/completions",
		"http://host/v1/chat/completions": "http://host/v1/chat/completions",
	}
	for raw, want := range cases {
		if got := chatCompletionsURL(normalizeEndpoint(raw)); got != want {
			t.Fatalf("endpoint %q: got %q want %q", raw, got, want)
		}
	}

	provider := NewLocalProvider(LocalOptions{Endpoint: "http://host/v1"})
	if provider.modelsURL != "http://host/v1/models" {
		t.Fatalf("unexpected models url: %q", provider.modelsURL)
	}
}
