package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Tetsuya81/QuickLang/internal/cli"
	"github.com/Tetsuya81/QuickLang/internal/config"
	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/db"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/language"
	"github.com/Tetsuya81/QuickLang/internal/logging"
	"github.com/Tetsuya81/QuickLang/internal/translation"
)

// runtime is what every provider-backed command needs: config, logger, optional database and
// the resolved translation provider.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *db.Pool
	models   translation.ModelStore
	history  history.Store
	provider translation.Provider
}

func loadConfig(envLoader *cli.EnvLoader) (*config.Config, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openRuntime(ctx context.Context, envLoader *cli.EnvLoader, providerName string) (*runtime, error) {
	cfg, err := loadConfig(envLoader)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger}
	if cfg.DatabaseEnabled() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.pool = pool
		rt.models = translation.NewDBModelStore(pool)
		if cfg.HistoryEnabled {
			rt.history = history.NewDBStore(pool)
		}
	} else {
		rt.models = translation.NewMemoryModelStore()
	}

	registry, err := translation.NewRegistryFromConfig(cfg, rt.models, logger)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to build translation providers: %w", err)
	}
	provider, err := registry.Provider(providerName)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.provider = provider

	logger.Debug().
		Str("provider", provider.Name()).
		Bool("database", rt.pool != nil).
		Bool("history", rt.history != nil).
		Msg("runtime ready")
	return rt, nil
}

func (rt *runtime) newCoordinator(onTransition func(coordinator.State), sinks ...coordinator.Sink) *coordinator.Coordinator {
	return coordinator.New(rt.provider, coordinator.Options{
		ProbeLanguage: language.MustParse(rt.cfg.ProbeLanguage),
		Logger:        rt.logger,
		Sinks:         sinks,
		OnTransition:  onTransition,
	})
}

func (rt *runtime) close() {
	if rt == nil || rt.pool == nil {
		return
	}
	if err := rt.pool.Close(); err != nil {
		rt.logger.Warn().Err(err).Msg("close database pool")
	}
}

// defaultPair parses the configured picker defaults, which config.Validate has already checked.
func defaultPair(cfg *config.Config) (language.Tag, language.Tag) {
	return language.MustParse(cfg.DefaultSourceLanguage), language.MustParse(cfg.DefaultTargetLanguage)
}

var errDatabaseRequired = errors.New("this command requires DATABASE_URL")
