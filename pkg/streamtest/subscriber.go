package streamtest

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/streamprobe/internal/core/logging"
	"github.com/colonyops/streamprobe/pkg/rx"
)

// Subscriber records every notification it receives and supports demand
// limiting, assertions, waiting for termination and reset.
//
// A Subscriber starts Active and becomes Terminated on the first error or
// completion. Only Reset leaves the Terminated state.
type Subscriber[T any] struct {
	delegate rx.Observer[T]
	log      zerolog.Logger
	opts     settings

	mu           sync.Mutex
	hist         History[T]
	bind         binding
	dropped      int
	ignored      int
	failures     []error
	unsubscribed bool
	terminal     *signal
	reset        *signal
}

var _ rx.Observer[int] = (*Subscriber[int])(nil)

// NewSubscriber constructs a Subscriber without a delegate. Combine with
// WithDemandLimit to cap processed values.
func NewSubscriber[T any](opts ...Option) *Subscriber[T] {
	return NewDelegatingSubscriber[T](nil, opts...)
}

// NewDelegatingSubscriber constructs a Subscriber that forwards processed
// notifications to delegate. A nil delegate disables forwarding.
func NewDelegatingSubscriber[T any](delegate rx.Observer[T], opts ...Option) *Subscriber[T] {
	s := newSettings(opts)

	l := logging.Component(s.log, "streamtest.subscriber")
	if s.name != "" {
		l = l.With().Str("name", s.name).Logger()
	}

	return &Subscriber[T]{
		delegate: delegate,
		log:      l,
		opts:     s,
		terminal: newSignal(),
		reset:    newSignal(),
	}
}

// SubscribeTo subscribes to p with the subscriber's own handlers and binds the
// returned cancellation handle. It fails with ErrSubscriptionAlreadySet,
// without calling p, when the subscriber is already bound. Reset unbinds.
func (s *Subscriber[T]) SubscribeTo(p rx.Producer[T]) (rx.Cancellation, error) {
	s.mu.Lock()
	err := s.bind.claim()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.Debug().Msg("subscribing")
	h := p.Subscribe(s.Next, s.Error, s.Complete)

	s.mu.Lock()
	err = s.bind.set(h)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return h, nil
}

// OnSubscribe binds h as the subscriber's subscription. A second call fails
// with ErrSubscriptionAlreadySet.
func (s *Subscriber[T]) OnSubscribe(h rx.Cancellation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bind.bind(h)
}

// Next records v while the demand limit allows it and forwards it to the
// delegate. Values beyond the limit, and values after a terminal
// notification, are dropped.
func (s *Subscriber[T]) Next(v T) {
	s.mu.Lock()
	switch {
	case s.hist.Terminated:
		s.ignored++
		s.mu.Unlock()
		s.log.Info().
			Func(func(e *zerolog.Event) { e.Str("value", logging.Render(v)) }).
			Msg("value after terminal event ignored")
		return

	case s.opts.limit > 0 && int64(len(s.hist.Values)) >= s.opts.limit:
		s.dropped++
		s.mu.Unlock()
		s.log.Debug().
			Int64("limit", s.opts.limit).
			Func(func(e *zerolog.Event) { e.Str("value", logging.Render(v)) }).
			Msg("value dropped: demand exhausted")
		return
	}

	s.hist.Values = append(s.hist.Values, v)
	s.touch()
	s.mu.Unlock()

	s.log.Debug().
		Func(func(e *zerolog.Event) { e.Str("value", logging.Render(v)) }).
		Msg("value received")

	if s.delegate != nil {
		s.forward(rx.KindNext, func() { s.delegate.Next(v) })
	}
}

// Error records err, terminates the subscriber, forwards err to the delegate
// and resolves the terminal signal. It is processed regardless of demand.
func (s *Subscriber[T]) Error(err error) {
	s.mu.Lock()
	late := s.hist.Terminated
	s.hist.Errors = append(s.hist.Errors, err)
	s.hist.Terminated = true
	s.touch()
	sig := s.terminal
	s.mu.Unlock()

	msg := "error received"
	if late {
		msg = "error after terminal event recorded"
	}
	s.log.Info().Str("error", logging.Render(err)).Msg(msg)

	if s.delegate != nil {
		s.forward(rx.KindError, func() { s.delegate.Error(err) })
	}
	sig.fire()
}

// Complete counts the completion, terminates the subscriber, forwards it to
// the delegate and resolves the terminal signal. It is processed regardless
// of demand.
func (s *Subscriber[T]) Complete() {
	s.mu.Lock()
	late := s.hist.Terminated
	s.hist.Completions++
	s.hist.Terminated = true
	s.touch()
	sig := s.terminal
	s.mu.Unlock()

	msg := "completed"
	if late {
		msg = "completion after terminal event recorded"
	}
	s.log.Info().Msg(msg)

	if s.delegate != nil {
		s.forward(rx.KindComplete, func() { s.delegate.Complete() })
	}
	sig.fire()
}

// forward calls fn, converting a delegate panic into a recorded DelegateError.
func (s *Subscriber[T]) forward(kind rx.Kind, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := &DelegateError{Kind: kind, Recovered: r}

			s.mu.Lock()
			s.failures = append(s.failures, err)
			s.mu.Unlock()

			s.log.Error().Err(err).Str("kind", kind.String()).Msg("delegate failed")
		}
	}()
	fn()
}

// touch refreshes the event marker. Callers hold s.mu.
func (s *Subscriber[T]) touch() {
	s.hist.Marker = s.opts.marker()
	s.hist.LastEventAt = s.opts.now()
}

// Reset clears recorded values, errors, completions, drop counters and
// delegate failures, unbinds the subscription handle without releasing it,
// and re-creates the terminal signal. A pending AwaitTerminalEvent returns
// ErrReset.
func (s *Subscriber[T]) Reset() {
	s.mu.Lock()
	old := s.reset
	s.clearLocked()
	s.mu.Unlock()

	old.fire()
	s.log.Debug().Msg("reset")
}

func (s *Subscriber[T]) clearLocked() {
	s.hist = History[T]{}
	s.bind = binding{}
	s.dropped = 0
	s.ignored = 0
	s.failures = nil
	s.unsubscribed = false
	s.terminal = newSignal()
	s.reset = newSignal()
}

// Unsubscribe releases the bound subscription handle, if any, and marks the
// subscriber unsubscribed. History is kept unless the subscriber was built
// with WithDestructiveDispose, in which case Unsubscribe also resets it.
// A pending AwaitTerminalEvent is not cancelled by a non-destructive
// Unsubscribe.
func (s *Subscriber[T]) Unsubscribe() {
	s.mu.Lock()
	h := s.bind.handle
	s.unsubscribed = true
	destructive := s.opts.destructiveDispose
	s.mu.Unlock()

	if h != nil && !h.Released() {
		h.Release()
		s.log.Debug().Msg("subscription released")
	}

	if destructive {
		s.Reset()
	}
}

// Dispose is an alias for Unsubscribe.
func (s *Subscriber[T]) Dispose() {
	s.Unsubscribe()
}

// Values returns a copy of the recorded values.
func (s *Subscriber[T]) Values() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.hist.Values)
}

// Errors returns a copy of the recorded errors.
func (s *Subscriber[T]) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.hist.Errors)
}

// Completions returns the number of completion notifications received.
func (s *Subscriber[T]) Completions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Completions
}

// Marker returns the token of the last recorded event, or "" if none.
func (s *Subscriber[T]) Marker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Marker
}

// LastEventAt returns when the last event was recorded.
func (s *Subscriber[T]) LastEventAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.LastEventAt
}

// IsTerminated reports whether an error or completion has been received.
func (s *Subscriber[T]) IsTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Terminated
}

// History returns a snapshot of all recorded state.
func (s *Subscriber[T]) History() History[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.clone()
}

// Dropped returns the number of values dropped by the demand limit.
func (s *Subscriber[T]) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Ignored returns the number of values ignored because they arrived after a
// terminal notification.
func (s *Subscriber[T]) Ignored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ignored
}

// DelegateFailures returns the recovered delegate panics, as *DelegateError.
func (s *Subscriber[T]) DelegateFailures() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.failures)
}

// HasSubscription reports whether a subscription handle is bound.
func (s *Subscriber[T]) HasSubscription() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bind.handle != nil
}

// IsUnsubscribed reports whether Unsubscribe or Dispose has been called since
// construction or the last Reset.
func (s *Subscriber[T]) IsUnsubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}
