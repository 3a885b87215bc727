package coordinator

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterSink prints the translated text of every completed request to w.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Deliver(_ context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.w, result.Text); err != nil {
		return fmt.Errorf("write translation: %w", err)
	}
	return nil
}
