// Package coordinator drives one translation request at a time through availability check,
// optional model download consent, translation and a terminal state.
//
// Every submission gets a new generation. Provider calls run on their own goroutine and their
// results are applied only while that generation is still current, so a cancelled or superseded
// request can never overwrite the state of a newer one.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/language"
	"github.com/Tetsuya81/QuickLang/internal/translation"
)

// DefaultProbeLanguage stands in for Auto when the provider needs a concrete source.
var DefaultProbeLanguage = language.MustParse("en")

// Sink receives completed translations, for example a display or a history recorder.
type Sink interface {
	Deliver(ctx context.Context, result Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, result Result) error

func (f SinkFunc) Deliver(ctx context.Context, result Result) error {
	return f(ctx, result)
}

type Options struct {
	// ProbeLanguage replaces Auto for availability checks and model preparation.
	ProbeLanguage language.Tag
	// Catalog supplies the fallback probe when the target is the probe language. Defaults to catalog.Default().
	Catalog *catalog.Catalog
	Logger        zerolog.Logger
	Sinks         []Sink
	// OnTransition is called with every new state while the coordinator lock is held.
	// It must not call back into the coordinator.
	OnTransition func(State)
}

type Coordinator struct {
	provider     translation.Provider
	probe        language.Tag
	languages    *catalog.Catalog
	logger       zerolog.Logger
	sinks        []Sink
	onTransition func(State)

	mu         sync.Mutex
	state      State
	generation uint64
	runCtx     context.Context
	cancelRun  context.CancelFunc
	changed    chan struct{}
	running    sync.WaitGroup
}

func New(provider translation.Provider, opts Options) *Coordinator {
	probe := opts.ProbeLanguage
	if probe.IsZero() || probe.IsAuto() {
		probe = DefaultProbeLanguage
	}
	languages := opts.Catalog
	if languages == nil {
		languages = catalog.Default()
	}

	return &Coordinator{
		provider:     provider,
		probe:        probe,
		languages:    languages,
		logger:       opts.Logger.With().Str("component", "coordinator").Logger(),
		sinks:        append([]Sink(nil), opts.Sinks...),
		onTransition: opts.OnTransition,
		state:        State{Phase: Idle},
		changed:      make(chan struct{}),
	}
}

// ProviderName returns the name of the provider this coordinator drives.
func (c *Coordinator) ProviderName() string {
	return c.provider.Name()
}

// ProbeLanguage returns the language used in place of Auto for availability checks.
func (c *Coordinator) ProbeLanguage() language.Tag {
	return c.probe
}

// ProbeFor returns the concrete source checked in place of Auto for target. A target equal to the
// probe language would make an identical pair, so the first other catalog language stands in.
func (c *Coordinator) ProbeFor(target language.Tag) language.Tag {
	if target != c.probe {
		return c.probe
	}
	for _, tag := range c.languages.ListTargetLanguages() {
		if tag != target {
			return tag
		}
	}
	return c.probe
}

// Submit starts req, cancelling whatever request is in flight. It fails synchronously with
// ErrInvalidRequest, leaving the state untouched, when req has no text or no concrete target.
func (c *Coordinator) Submit(req Request) error {
	if err := req.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.abandonLocked()
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.runCtx, c.cancelRun = ctx, cancel
	c.setLocked(State{Phase: CheckingAvailability, Generation: gen, Request: &req})
	c.running.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.running.Done()
		c.check(ctx, gen, req)
	}()
	return nil
}

// ConfirmDownload accepts the pending model download. It is only valid in AwaitingDownloadConsent.
func (c *Coordinator) ConfirmDownload() error {
	c.mu.Lock()
	if c.state.Phase != AwaitingDownloadConsent || c.state.Request == nil {
		c.mu.Unlock()
		return ErrNoPendingDownload
	}
	gen := c.generation
	req := c.state.Request
	ctx := c.runCtx
	c.setLocked(State{Phase: Downloading, Generation: gen, Request: req})
	c.running.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.running.Done()
		c.download(ctx, gen, *req)
	}()
	return nil
}

// Cancel abandons the current request and returns to Idle. From Idle it does nothing.
// From Completed or Failed it dismisses the result.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == Idle {
		return
	}
	c.abandonLocked()
	c.generation++
	c.setLocked(State{Phase: Idle, Generation: c.generation})
}

// Close cancels the current request and waits until every provider call and sink delivery has
// returned. The coordinator must not be used afterwards.
func (c *Coordinator) Close() {
	c.Cancel()
	c.running.Wait()
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changed returns a channel that is closed at the next transition.
func (c *Coordinator) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Wait blocks until cond holds for the current state or ctx ends.
func (c *Coordinator) Wait(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		c.mu.Lock()
		state := c.state
		changed := c.changed
		c.mu.Unlock()

		if cond(state) {
			return state, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

// CheckPair asks the provider about a pair without touching the coordinator state.
func (c *Coordinator) CheckPair(ctx context.Context, source, target language.Tag) (translation.Availability, error) {
	if source.IsZero() {
		return translation.Unsupported, newError(KindInvalidRequest, "source language is required", nil)
	}
	if err := validateTarget(target); err != nil {
		return translation.Unsupported, err
	}

	status, err := c.provider.CheckAvailability(ctx, c.concreteSource(source, target), target)
	if err != nil {
		return translation.Unsupported, newError(KindProviderUnavailable, "", err)
	}
	return status, nil
}

func (c *Coordinator) check(ctx context.Context, gen uint64, req Request) {
	probe := c.concreteSource(req.source, req.target)
	status, err := c.provider.CheckAvailability(ctx, probe, req.target)
	if err != nil {
		c.fail(gen, newError(KindProviderUnavailable, "", err))
		return
	}

	switch status {
	case translation.Installed:
		c.translate(ctx, gen, req)
	case translation.DownloadRequired:
		c.advance(gen, AwaitingDownloadConsent)
	case translation.Unsupported:
		c.fail(gen, newError(KindUnsupportedLanguagePair, fmt.Sprintf("%s to %s", req.source, req.target), nil))
	default:
		c.fail(gen, newError(KindProviderUnavailable, fmt.Sprintf("unknown availability status %d", status), nil))
	}
}

func (c *Coordinator) download(ctx context.Context, gen uint64, req Request) {
	if err := c.provider.PrepareModel(ctx, c.concreteSource(req.source, req.target), req.target); err != nil {
		c.fail(gen, newError(KindModelDownloadFailed, "", err))
		return
	}
	c.translate(ctx, gen, req)
}

func (c *Coordinator) translate(ctx context.Context, gen uint64, req Request) {
	if !c.advance(gen, Translating) {
		return
	}

	resp, err := c.provider.Translate(ctx, translation.TranslateRequest{
		Text:   req.text,
		Source: req.source,
		Target: req.target,
	})
	if err != nil {
		c.fail(gen, newError(KindTranslationFailed, "", err))
		return
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		c.fail(gen, newError(KindTranslationFailed, "provider returned an empty translation", nil))
		return
	}

	result := Result{
		RequestID:       req.id,
		OriginalText:    req.text,
		RequestedSource: req.source,
		Text:            resp.Text,
		Source:          resp.Source,
		Target:          req.target,
		ProviderName:    resp.ProviderName,
		ModelName:       resp.ModelName,
		Latency:         resp.Latency,
	}
	if result.ProviderName == "" {
		result.ProviderName = c.provider.Name()
	}

	c.mu.Lock()
	if gen != c.generation {
		c.logDiscarded(gen, Completed)
		c.mu.Unlock()
		return
	}
	c.setLocked(State{Phase: Completed, Generation: gen, Request: c.state.Request, Result: &result})
	c.mu.Unlock()

	c.deliver(ctx, result)
}

// advance moves the current request to phase. It reports false when gen has been superseded.
func (c *Coordinator) advance(gen uint64, phase Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logDiscarded(gen, phase)
		return false
	}
	c.setLocked(State{Phase: phase, Generation: gen, Request: c.state.Request})
	return true
}

func (c *Coordinator) fail(gen uint64, failure *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logDiscarded(gen, Failed)
		return
	}

	event := c.logger.Warn().
		Uint64("generation", gen).
		Str("kind", failure.Kind.String())
	if c.state.Request != nil {
		event = event.Str("request_id", c.state.Request.id)
	}
	event.Err(failure).Msg("translation request failed")

	c.setLocked(State{Phase: Failed, Generation: gen, Request: c.state.Request, Err: failure})
}

func (c *Coordinator) deliver(ctx context.Context, result Result) {
	deliverCtx := context.WithoutCancel(ctx)
	for _, sink := range c.sinks {
		if err := sink.Deliver(deliverCtx, result); err != nil {
			c.logger.Warn().Err(err).Str("request_id", result.RequestID).Msg("result sink failed")
		}
	}
}

// abandonLocked stops the in-flight request, if any, and tells the provider to drop its session.
func (c *Coordinator) abandonLocked() {
	inFlight := c.state.Phase.InFlight()
	if c.cancelRun != nil {
		c.cancelRun()
	}
	c.runCtx, c.cancelRun = nil, nil
	if inFlight {
		c.provider.InvalidateSession()
	}
}

func (c *Coordinator) setLocked(next State) {
	c.state = next
	if next.Phase.Terminal() && c.cancelRun != nil {
		c.cancelRun()
		c.runCtx, c.cancelRun = nil, nil
	}
	close(c.changed)
	c.changed = make(chan struct{})

	event := c.logger.Debug().
		Uint64("generation", next.Generation).
		Str("phase", next.Phase.String())
	if next.Request != nil {
		event = event.Str("request_id", next.Request.id)
	}
	event.Msg("coordinator state changed")

	if c.onTransition != nil {
		c.onTransition(next)
	}
}

func (c *Coordinator) logDiscarded(gen uint64, phase Phase) {
	c.logger.Debug().
		Uint64("generation", gen).
		Uint64("current_generation", c.generation).
		Str("phase", phase.String()).
		Msg("discarding stale provider response")
}

func (c *Coordinator) concreteSource(source, target language.Tag) language.Tag {
	if source.IsAuto() {
		return c.ProbeFor(target)
	}
	return source
}
