package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Tetsuya81/QuickLang/internal/coordinator"
	"github.com/Tetsuya81/QuickLang/internal/globaltime"
	"github.com/Tetsuya81/QuickLang/internal/history"
	"github.com/Tetsuya81/QuickLang/internal/language"
)

type requestView struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Text   string `json:"text"`
}

type resultView struct {
	Text      string `json:"text"`
	Source    string `json:"source,omitempty"`
	Target    string `json:"target"`
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type errorView struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	UserMessage string `json:"user_message"`
}

type stateView struct {
	Phase      string       `json:"phase"`
	Generation uint64       `json:"generation"`
	Request    *requestView `json:"request,omitempty"`
	Result     *resultView  `json:"result,omitempty"`
	Error      *errorView   `json:"error,omitempty"`
}

type availabilityView struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Probe   string `json:"probe,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func buildStateView(state coordinator.State) stateView {
	view := stateView{
		Phase:      state.Phase.String(),
		Generation: state.Generation,
	}
	if req := state.Request; req != nil {
		view.Request = &requestView{
			ID:     req.ID(),
			Source: req.Source().Code(),
			Target: req.Target().Code(),
			Text:   req.Text(),
		}
	}
	if result := state.Result; result != nil {
		view.Result = &resultView{
			Text:      result.Text,
			Target:    result.Target.Code(),
			Provider:  result.ProviderName,
			Model:     result.ModelName,
			LatencyMS: result.Latency.Milliseconds(),
		}
		if !result.Source.IsZero() {
			view.Result.Source = result.Source.Code()
		}
	}
	if state.Err != nil {
		view.Error = buildErrorView(state.Err)
	}
	return view
}

func buildErrorView(err *coordinator.Error) *errorView {
	return &errorView{
		Kind:        err.Kind.String(),
		Message:     err.Error(),
		UserMessage: err.UserMessage(),
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	data := map[string]any{
		"service":  "quicklang",
		"time":     globaltime.UTC(),
		"provider": s.coord.ProviderName(),
		"database": "disabled",
	}
	if s.database != nil {
		if err := s.database.Ping(c.Request().Context()); err != nil {
			s.logger.Error().Err(err).Msg("database ping failed")
			data["database"] = "unavailable"
			return errorWithStatus(c, http.StatusServiceUnavailable, "Database is unavailable", data)
		}
		data["database"] = "ok"
	}
	return success(c, data)
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"sources":        s.catalog.SourceOptions(),
		"targets":        s.catalog.TargetOptions(),
		"default_source": s.opts.DefaultSource.Code(),
		"default_target": s.opts.DefaultTarget.Code(),
	})
}

func (s *Server) handleAvailability(c echo.Context) error {
	source, target, fieldErrors := s.parsePair(c.QueryParam("from"), c.QueryParam("to"))
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	status, err := s.coord.CheckPair(c.Request().Context(), source, target)
	if err != nil {
		return s.coordinatorError(c, err)
	}

	view := availabilityView{
		From:    source.Code(),
		To:      target.Code(),
		Status:  status.String(),
		Message: status.Description(),
	}
	if source.IsAuto() {
		view.Probe = s.coord.ProbeFor(target).Code()
	}
	return success(c, view)
}

// handleState returns the coordinator state. With ?wait=<duration> it blocks until the request
// with generation >= ?after= has settled (idle, awaiting consent, completed or failed).
func (s *Server) handleState(c echo.Context) error {
	wait, err := parseWait(c.QueryParam("wait"))
	if err != nil {
		return failValidation(c, map[string]string{"wait": err.Error()})
	}
	after, err := parseGeneration(c.QueryParam("after"))
	if err != nil {
		return failValidation(c, map[string]string{"after": err.Error()})
	}

	if wait == 0 {
		return success(c, buildStateView(s.coord.State()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
	defer cancel()
	state, _ := s.coord.Wait(ctx, func(state coordinator.State) bool {
		return state.Generation >= after && settled(state.Phase)
	})
	return success(c, buildStateView(state))
}

func (s *Server) handleSubmit(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return failValidation(c, map[string]string{"body": "could not read request body"})
	}
	payload, err := decodeTranslationPayload(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	source, target, fieldErrors := s.parsePair(payload.Source, payload.Target)
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	text := payload.Text
	if payload.URL != "" {
		text, err = s.fetch(c.Request().Context(), payload.URL)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", payload.URL).Msg("fetch url failed")
			return fail(c, http.StatusUnprocessableEntity, "Failed to extract text from url", map[string]string{
				"url": err.Error(),
			})
		}
	}

	req, err := coordinator.NewRequest(source, target, text)
	if err != nil {
		return s.coordinatorError(c, err)
	}
	if err := s.coord.Submit(req); err != nil {
		return s.coordinatorError(c, err)
	}

	view := buildStateView(s.coord.State())
	if view.Request == nil || view.Request.ID != req.ID() {
		// A concurrent submit or cancel already replaced this request.
		view.Request = &requestView{ID: req.ID(), Source: source.Code(), Target: target.Code(), Text: text}
	}
	return successWithStatus(c, http.StatusAccepted, view)
}

func (s *Server) handleConfirm(c echo.Context) error {
	if err := s.coord.ConfirmDownload(); err != nil {
		if errors.Is(err, coordinator.ErrNoPendingDownload) {
			return fail(c, http.StatusConflict, "No download is awaiting consent", nil)
		}
		return s.coordinatorError(c, err)
	}
	return successWithStatus(c, http.StatusAccepted, buildStateView(s.coord.State()))
}

func (s *Server) handleCancel(c echo.Context) error {
	s.coord.Cancel()
	return success(c, buildStateView(s.coord.State()))
}

func (s *Server) handleModels(c echo.Context) error {
	if s.models == nil {
		return fail(c, http.StatusNotFound, "Installed models are not tracked", nil)
	}

	pairs, err := s.models.ListInstalledPairs(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list installed models failed")
		return internalError(c, "Failed to load installed models")
	}
	return success(c, map[string]any{
		"provider": s.coord.ProviderName(),
		"items":    pairs,
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return fail(c, http.StatusNotFound, "History is disabled", nil)
	}

	limit, err := parsePositiveInt(c.QueryParam("limit"), history.DefaultListLimit, 1, history.MaxListLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	records, err := s.history.ListRecent(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list history failed")
		return internalError(c, "Failed to load history")
	}
	return success(c, map[string]any{
		"items": records,
	})
}

func (s *Server) parsePair(rawSource, rawTarget string) (language.Tag, language.Tag, map[string]string) {
	fieldErrors := map[string]string{}

	source := s.opts.DefaultSource
	if strings.TrimSpace(rawSource) != "" {
		tag, err := s.catalog.Lookup(rawSource)
		if err != nil {
			fieldErrors["source"] = err.Error()
		}
		source = tag
	}

	target := s.opts.DefaultTarget
	if strings.TrimSpace(rawTarget) != "" {
		tag, err := s.catalog.Lookup(rawTarget)
		switch {
		case err != nil:
			fieldErrors["target"] = err.Error()
		case tag.IsAuto():
			fieldErrors["target"] = "auto-detect cannot be a target language"
		}
		target = tag
	}

	return source, target, fieldErrors
}

func (s *Server) coordinatorError(c echo.Context, err error) error {
	var coordErr *coordinator.Error
	if !errors.As(err, &coordErr) {
		s.logger.Error().Err(err).Msg("unclassified coordinator error")
		return internalError(c, "Internal server error")
	}

	switch coordErr.Kind {
	case coordinator.KindInvalidRequest, coordinator.KindUnknownLanguage:
		return fail(c, http.StatusBadRequest, coordErr.UserMessage(), buildErrorView(coordErr))
	case coordinator.KindProviderUnavailable:
		return errorWithStatus(c, http.StatusBadGateway, coordErr.UserMessage(), buildErrorView(coordErr))
	default:
		return internalError(c, coordErr.UserMessage())
	}
}

func settled(phase coordinator.Phase) bool {
	switch phase {
	case coordinator.Idle, coordinator.AwaitingDownloadConsent, coordinator.Completed, coordinator.Failed:
		return true
	default:
		return false
	}
}

func parseWait(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	wait, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be a duration such as 30s")
	}
	if wait < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	if wait > maxWait {
		wait = maxWait
	}
	return wait, nil
}

func parseGeneration(raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return value, nil
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
