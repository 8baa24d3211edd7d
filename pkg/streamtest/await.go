package streamtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/colonyops/streamprobe/internal/core/logging"
)

// AwaitTerminalEvent blocks until an error or completion has been recorded or
// timeout elapses. It returns nil immediately when the subscriber is already
// terminated. A non-positive timeout uses the configured default.
//
// On timeout it returns a *TimeoutError. A Reset while waiting returns
// ErrReset. Unsubscribe and Dispose do not release the wait.
func (s *Subscriber[T]) AwaitTerminalEvent(timeout time.Duration) error {
	return s.AwaitTerminalEventContext(context.Background(), timeout)
}

// AwaitTerminalEventContext is AwaitTerminalEvent bounded additionally by ctx.
func (s *Subscriber[T]) AwaitTerminalEventContext(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.opts.awaitTimeout
	}

	s.mu.Lock()
	term, reset := s.terminal, s.reset
	s.mu.Unlock()

	if term.fired() {
		return nil
	}

	log := s.log.With().Ctx(ctx).Logger()
	log.Debug().Dur("timeout", timeout).Msg("awaiting terminal event")

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-term.done():
		return nil

	case <-reset.done():
		// Reset and termination can race; a terminal event wins.
		if term.fired() {
			return nil
		}
		log.Debug().Msg("await released by reset")
		return ErrReset

	case <-timer.C:
		h := s.History()
		err := &TimeoutError{
			Timeout:     timeout,
			Values:      len(h.Values),
			Errors:      len(h.Errors),
			Completions: h.Completions,
		}
		log.Info().Err(err).Msg("await timed out")
		return err

	case <-ctx.Done():
		return fmt.Errorf("await terminal event: %w", ctx.Err())
	}
}

// TestContext returns t.Context() tagged with the test name, so log records
// written by AwaitTerminalEventContext carry a "test" field.
func TestContext(t testing.TB) context.Context {
	return logging.WithTestName(t.Context(), t.Name())
}
