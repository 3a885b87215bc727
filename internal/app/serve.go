package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/httpapi"
	"github.com/Tetsuya81/QuickLang/internal/reader"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	envLoader := cli.AddEnvFlag(fs, ".env", "Path to .env file")
	host := fs.String("host", "127.0.0.1", "HTTP listen host")
	port := fs.Int("port", 8091, "HTTP listen port")
	providerName := fs.String("provider", "", "Translation provider (default from TRANSLATION_PROVIDER)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 90*time.Second, "HTTP write timeout, must exceed the long-poll wait")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}
	if *port < 1 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, envLoader, *providerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer rt.close()

	store := rt.history
	if store == nil && rt.cfg.HistoryEnabled {
		store = history.NewMemoryStore(history.DefaultMemoryCapacity)
		rt.logger.Info().Msg("no database configured; history is kept in memory")
	}

	var sinks []coordinator.Sink
	if store != nil {
		sinks = append(sinks, history.NewRecorder(store))
	}
	coord := rt.newCoordinator(nil, sinks...)
	defer coord.Close()

	deps := httpapi.Deps{
		Coordinator: coord,
		Catalog:     catalog.Default(),
		History:     store,
		Models:      rt.models,
		Fetch:       reader.FetchText,
	}
	if rt.pool != nil {
		deps.Database = rt.pool
	}

	defaultSource, defaultTarget := defaultPair(rt.cfg)
	server := httpapi.NewServer(deps, rt.logger, httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		TokenHash:          rt.cfg.APITokenHash,
		CORSAllowedOrigins: rt.cfg.CORSAllowedOriginsList(),
		DefaultSource:      defaultSource,
		DefaultTarget:      defaultTarget,
	})

	if rt.cfg.APITokenHash == "" && *host != "127.0.0.1" && *host != "localhost" {
		rt.logger.Warn().Str("host", *host).Msg("API_TOKEN_HASH is empty; the api is open to anyone who can reach it")
	}

	if err := server.Start(ctx); err != nil {
		rt.logger.Error().Err(err).Msg("serve failed")
		return 1
	}
	return 0
}
