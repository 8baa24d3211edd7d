package streamtest

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/streamprobe/internal/core/logging"
	"github.com/colonyops/streamprobe/pkg/rx"
)

// EntryKind classifies a LogEntry.
type EntryKind string

// Log entry kinds written by Observer.
const (
	EntryNext      EntryKind = "next"
	EntryError     EntryKind = "error"
	EntryComplete  EntryKind = "complete"
	EntrySuccess   EntryKind = "success"
	EntrySubscribe EntryKind = "subscribe"
	EntryDispose   EntryKind = "dispose"
	EntryCancel    EntryKind = "cancel"
)

// LogEntry is one line of an Observer's structured log.
type LogEntry struct {
	Time    time.Time
	Kind    EntryKind
	Message string
}

// String formats the entry as "<time> <kind>: <message>".
func (e LogEntry) String() string {
	return fmt.Sprintf("%s %s: %s", e.Time.Format(time.RFC3339Nano), e.Kind, e.Message)
}

// Observer records one subscription's notifications as a timestamped log and
// forwards them to an optional delegate.
//
// Delegate panics are not recovered: forwarding happens on the producer's
// emission call and a panic surfaces there.
type Observer[T any] struct {
	delegate rx.Observer[T]
	log      zerolog.Logger
	now      func() time.Time

	mu            sync.Mutex
	bind          binding
	disposed      bool
	logs          []LogEntry
	notifications []rx.Notification[T]
}

var _ rx.Observer[int] = (*Observer[int])(nil)

// NewObserver constructs an Observer without a delegate.
func NewObserver[T any](opts ...Option) *Observer[T] {
	return NewDelegatingObserver[T](nil, opts...)
}

// NewDelegatingObserver constructs an Observer that forwards every
// notification to delegate. A nil delegate disables forwarding.
func NewDelegatingObserver[T any](delegate rx.Observer[T], opts ...Option) *Observer[T] {
	s := newSettings(opts)

	l := logging.Component(s.log, "streamtest.observer")
	if s.name != "" {
		l = l.With().Str("name", s.name).Logger()
	}

	return &Observer[T]{
		delegate: delegate,
		log:      l,
		now:      s.now,
	}
}

// SubscribeTo subscribes to p with the observer's own handlers and binds the
// returned cancellation handle. It fails with ErrSubscriptionAlreadySet,
// without calling p, when the observer is already bound.
func (o *Observer[T]) SubscribeTo(p rx.Producer[T]) (rx.Cancellation, error) {
	o.mu.Lock()
	err := o.bind.claim()
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Logged before subscribing: synchronous producers emit from inside
	// Subscribe.
	o.record(EntrySubscribe, "subscribing")
	h := p.Subscribe(o.Next, o.Error, o.Complete)

	o.mu.Lock()
	err = o.bind.set(h)
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return h, nil
}

// OnSubscribe binds h as the observer's subscription. A second call fails with
// ErrSubscriptionAlreadySet.
func (o *Observer[T]) OnSubscribe(h rx.Cancellation) error {
	o.mu.Lock()
	err := o.bind.bind(h)
	o.mu.Unlock()
	if err != nil {
		return err
	}

	o.record(EntrySubscribe, "subscription established")
	return nil
}

// Next logs v and forwards it to the delegate.
func (o *Observer[T]) Next(v T) {
	o.record(EntryNext, logging.Render(v), rx.Next(v))
	if o.delegate != nil {
		o.delegate.Next(v)
	}
}

// Error logs err and forwards it to the delegate.
func (o *Observer[T]) Error(err error) {
	o.record(EntryError, logging.Render(err), rx.Error[T](err))
	if o.delegate != nil {
		o.delegate.Error(err)
	}
}

// Complete logs completion and forwards it to the delegate.
func (o *Observer[T]) Complete() {
	o.record(EntryComplete, "completed", rx.Complete[T]())
	if o.delegate != nil {
		o.delegate.Complete()
	}
}

// Success logs the single value of a single-value producer and forwards it to
// the delegate's Success handler, or to its Next handler when the delegate
// does not implement rx.SuccessObserver.
func (o *Observer[T]) Success(v T) {
	o.record(EntrySuccess, logging.Render(v), rx.Next(v))
	switch d := o.delegate.(type) {
	case nil:
	case rx.SuccessObserver[T]:
		d.Success(v)
	default:
		d.Next(v)
	}
}

// Dispose marks the observer disposed and releases the bound subscription, if
// any. Recorded logs are kept. Calling Dispose again only logs the call.
func (o *Observer[T]) Dispose() {
	o.mu.Lock()
	o.disposed = true
	h := o.bind.handle
	o.mu.Unlock()

	o.record(EntryDispose, "dispose requested")

	if h == nil {
		return
	}
	if h.Released() {
		o.record(EntryCancel, "subscription already released")
		return
	}
	h.Release()
	o.record(EntryCancel, "subscription released")
}

// AssertSubscribed returns ErrNotSubscribed unless a subscription handle has
// been bound.
func (o *Observer[T]) AssertSubscribed() error {
	if !o.HasSubscription() {
		return ErrNotSubscribed
	}
	return nil
}

// HasSubscription reports whether a subscription handle is bound.
func (o *Observer[T]) HasSubscription() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bind.handle != nil
}

// IsDisposed reports whether Dispose has been called.
func (o *Observer[T]) IsDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Logs returns a copy of the log in recorded order.
func (o *Observer[T]) Logs() []LogEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.logs)
}

// Notifications returns a copy of the received notifications in order.
// Success values appear as next notifications.
func (o *Observer[T]) Notifications() []rx.Notification[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.notifications)
}

func (o *Observer[T]) record(kind EntryKind, msg string, n ...rx.Notification[T]) {
	entry := LogEntry{Time: o.now(), Kind: kind, Message: msg}

	o.mu.Lock()
	o.logs = append(o.logs, entry)
	o.notifications = append(o.notifications, n...)
	o.mu.Unlock()

	o.log.Debug().Str("kind", string(kind)).Str("message", msg).Msg("observer event")
}
