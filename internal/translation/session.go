package translation

import (
	"context"
	"sync"
)

// session scopes in-flight provider calls so that all of them can be abandoned at once.
type session struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession() *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{ctx: ctx, cancel: cancel}
}

// bind derives a call context that ends with parent or with the current session, whichever ends first.
func (s *session) bind(parent context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	current := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(current, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// invalidate cancels every call bound so far and starts a fresh session.
func (s *session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	s.ctx, s.cancel = context.WithCancel(context.Background())
}
