package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/language"
	"github.com/Tetsuya81/QuickLang/internal/reader"
	"github.com/Tetsuya81/QuickLang/internal/translation"
)

const maxWait = 60 * time.Second

// Fetcher extracts translatable text from a URL.
type Fetcher func(ctx context.Context, pageURL string) (string, error)

// Pinger reports database connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelLister lists the language pairs that have a prepared model.
type ModelLister interface {
	ListInstalledPairs(ctx context.Context) ([]translation.InstalledPair, error)
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// TokenHash is a bcrypt hash; when set every /api/v1 route except health needs the bearer token.
	TokenHash          string
	CORSAllowedOrigins []string
	DefaultSource      language.Tag
	DefaultTarget      language.Tag
}

// Deps are the collaborators the handlers call. Coordinator is required.
type Deps struct {
	Coordinator *coordinator.Coordinator
	Catalog     *catalog.Catalog
	History     history.Store
	Models      ModelLister
	Database    Pinger
	Fetch       Fetcher
}

type Server struct {
	coord    *coordinator.Coordinator
	catalog  *catalog.Catalog
	history  history.Store
	models   ModelLister
	database Pinger
	fetch    Fetcher
	logger   zerolog.Logger
	opts     Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	if opts.Port <= 0 {
		opts.Port = 8091
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// Long-poll requests hold the connection for up to maxWait.
		opts.WriteTimeout = maxWait + 30*time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.DefaultSource.IsZero() {
		opts.DefaultSource = language.Auto
	}
	if opts.DefaultTarget.IsZero() || opts.DefaultTarget.IsAuto() {
		opts.DefaultTarget = language.MustParse("ja")
	}
	opts.Host = host

	languages := deps.Catalog
	if languages == nil {
		languages = catalog.Default()
	}
	fetch := deps.Fetch
	if fetch == nil {
		fetch = reader.FetchText
	}

	return &Server{
		coord:    deps.Coordinator,
		catalog:  languages,
		history:  deps.History,
		models:   deps.Models,
		database: deps.Database,
		fetch:    fetch,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		opts:     opts,
	}
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if origins := s.opts.CORSAllowedOrigins; len(origins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			MaxAge:       3600,
		}))
	}
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", maxRequestBodyBytes)))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)

	protected := api.Group("", s.requireToken())
	protected.GET("/languages", s.handleLanguages)
	protected.GET("/availability", s.handleAvailability)
	protected.GET("/models", s.handleModels)
	protected.GET("/translation", s.handleState)
	protected.POST("/translation", s.handleSubmit)
	protected.POST("/translation/confirm", s.handleConfirm)
	protected.POST("/translation/cancel", s.handleCancel)
	protected.GET("/history", s.handleHistory)

	return e
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.coord == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Bool("auth", s.opts.TokenHash != "").
		Msg("quicklang api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("quicklang api server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}
