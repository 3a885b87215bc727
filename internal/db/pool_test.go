package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm/logger"

	"github.com/Tetsuya81/QuickLang/internal/config"
)

func TestNewPoolRequiresDatabaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewPool(context.Background(), &config.Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewPool(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level string
		env   string
		want  logger.LogLevel
	}{
		{level: "debug", want: logger.Info},
		{level: "info", want: logger.Warn},
		{level: "error", want: logger.Error},
		{level: "silent", want: logger.Silent},
		{level: "bogus", env: "local", want: logger.Warn},
		{level: "bogus", env: "production", want: logger.Error},
	}
	for _, tc := range cases {
		if got := resolveGormLogLevel(tc.level, tc.env); got != tc.want {
			t.Fatalf("resolveGormLogLevel(%q, %q) = %v, want %v", tc.level, tc.env, got, tc.want)
		}
	}
}

func TestNilPoolIsSafe(t *testing.T) {
	t.Parallel()

	var pool *Pool
	if err := pool.Close(); err != nil {
		t.Fatalf("close nil pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping on nil pool to fail")
	}
	var installed bool
	if err := pool.QueryRow(context.Background(), "SELECT 1").Scan(&installed); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows from nil pool row, got %v", err)
	}
}
