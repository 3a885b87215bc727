package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/db"
	"github.com/Tetsuya81/QuickLang/internal/globaltime"
	"github.com/Tetsuya81/QuickLang/internal/language"
)

type failingStore struct{}

func (failingStore) Insert(context.Context, Record) (string, error) {
	return "", errors.New("connection refused")
}

func (failingStore) ListRecent(context.Context, int) ([]Record, error) {
	return nil, nil
}

func TestRecorderStoresResult(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	recorder := NewRecorder(store)
	err := recorder.Deliver(context.Background(), coordinator.Result{
		RequestID:       "req-1",
		OriginalText:    "Hello",
		RequestedSource: language.Auto,
		Text:            "こんにちは",
		Source:          language.MustParse("en"),
		Target:          language.MustParse("ja"),
		ProviderName:    "local",
		ModelName:       "hy-mt",
		Latency:         1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	records, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	got := records[0]
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %+v", got)
	}
	if got.RequestedSource != "auto" || got.ResolvedSource != "en" || got.Target != "ja" {
		t.Fatalf("unexpected languages: %+v", got)
	}
	if got.TranslatedText != "こんにちは" || got.LatencyMS != 1500 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestRecorderWrapsStoreError(t *testing.T) {
	t.Parallel()

	err := NewRecorder(failingStore{}).Deliver(context.Background(), coordinator.Result{RequestID: "req-9"})
	if err == nil || err.Error() != "record translation req-9: connection refused" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryStoreOrderAndCapacity(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	t.Cleanup(globaltime.ResetTime)

	store := NewMemoryStore(3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		if _, err := store.Insert(ctx, Record{RequestID: fmt.Sprintf("req-%d", i)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	records, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected capacity to cap records, got %d", len(records))
	}
	for i, want := range []string{"req-5", "req-4", "req-3"} {
		if records[i].RequestID != want {
			t.Fatalf("record %d: got %s want %s", i, records[i].RequestID, want)
		}
	}
	if !records[0].CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected mocked timestamp, got %s", records[0].CreatedAt)
	}

	limited, _ := store.ListRecent(ctx, 1)
	if len(limited) != 1 || limited[0].RequestID != "req-5" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-1: DefaultListLimit, 0: DefaultListLimit, 5: 5, 1000: MaxListLimit}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRecordFromRow(t *testing.T) {
	t.Parallel()

	model := "hy-mt"
	latency := 42
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*3600))
	record := recordFromRow(db.TranslationRecord{
		TranslationRecordUUID: "uuid-1",
		RequestID:             "req-1",
		RequestedSourceLang:   "en",
		TargetLang:            "fr",
		OriginalText:          "Hello",
		TranslatedText:        "Bonjour",
		ProviderName:          "local",
		ModelName:             &model,
		LatencyMS:             &latency,
		CreatedAt:             created,
	})

	if record.ID != "uuid-1" || record.ModelName != "hy-mt" || record.ResolvedSource != "" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Latency != 42*time.Millisecond || record.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected latency or timezone: %+v", record)
	}
	if optionalString("") != nil || *optionalString("x") != "x" {
		t.Fatalf("unexpected optionalString behaviour")
	}
}
