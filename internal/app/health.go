package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/db"
	"github.com/Tetsuya81/QuickLang/internal/logging"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	envLoader := cli.AddEnvFlag(fs, ".env", "Path to .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	if !cfg.DatabaseEnabled() {
		fmt.Fprintln(os.Stdout, "database: disabled")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database: unavailable (%v)\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("database ping failed")
		fmt.Fprintf(os.Stderr, "database: unavailable (%v)\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, "database: ok")
	return 0
}
