package streamtest

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/streamprobe/internal/core/logging"
	"github.com/colonyops/streamprobe/pkg/rx"
)

// TapEvent describes one notification passing through a Tap.
type TapEvent struct {
	Tap     string
	ID      uuid.UUID
	Seq     int
	Kind    rx.Kind
	Payload any
}

// TapSubscription is a snapshot of the counters a Tap keeps per subscription.
type TapSubscription struct {
	ID          uuid.UUID
	Seq         int
	Values      int
	Errors      int
	Completions int
	Released    bool
}

// Tap wraps a producer and logs every notification flowing through it, tagged
// with a per-subscription id. It is itself a producer, so it can be placed
// anywhere in a pipeline under test.
type Tap[T any] struct {
	name   string
	source rx.Producer[T]
	log    zerolog.Logger

	mu   sync.Mutex
	seq  int
	subs []*TapSubscription

	hooksMu sync.RWMutex
	hooks   []func(TapEvent)
}

var _ rx.Producer[int] = (*Tap[int])(nil)

// NewTap wraps source. Only WithLogger applies.
func NewTap[T any](name string, source rx.Producer[T], opts ...Option) *Tap[T] {
	s := newSettings(opts)
	return &Tap[T]{
		name:   name,
		source: source,
		log:    logging.Component(s.log, "streamtest.tap").With().Str("tap", name).Logger(),
	}
}

// OnEvent registers a hook that fires for every notification. Hooks run on
// the producer's emission call; a panicking hook is recovered and logged.
func (t *Tap[T]) OnEvent(fn func(TapEvent)) {
	t.hooksMu.Lock()
	t.hooks = append(t.hooks, fn)
	t.hooksMu.Unlock()
}

// Subscribe subscribes to the wrapped producer, observing each notification
// before passing it on.
func (t *Tap[T]) Subscribe(next func(T), fail func(error), complete func()) rx.Cancellation {
	t.mu.Lock()
	t.seq++
	sub := &TapSubscription{ID: uuid.New(), Seq: t.seq}
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	log := t.log.With().Str("sub", sub.ID.String()).Int("seq", sub.Seq).Logger()
	log.Debug().Msg("subscribe")

	inner := t.source.Subscribe(
		func(v T) {
			t.observe(sub, rx.KindNext, v, log)
			if next != nil {
				next(v)
			}
		},
		func(err error) {
			t.observe(sub, rx.KindError, err, log)
			if fail != nil {
				fail(err)
			}
		},
		func() {
			t.observe(sub, rx.KindComplete, nil, log)
			if complete != nil {
				complete()
			}
		},
	)

	return rx.NewCancellation(func() {
		t.mu.Lock()
		sub.Released = true
		t.mu.Unlock()

		log.Debug().Msg("release")
		if inner != nil {
			inner.Release()
		}
	})
}

func (t *Tap[T]) observe(sub *TapSubscription, kind rx.Kind, payload any, log zerolog.Logger) {
	t.mu.Lock()
	switch kind {
	case rx.KindNext:
		sub.Values++
	case rx.KindError:
		sub.Errors++
	case rx.KindComplete:
		sub.Completions++
	}
	t.mu.Unlock()

	e := log.Debug().Str("kind", kind.String())
	if payload != nil {
		e = e.Str("payload", logging.Render(payload))
	}
	e.Msg("notification")

	t.runHooks(TapEvent{Tap: t.name, ID: sub.ID, Seq: sub.Seq, Kind: kind, Payload: payload}, log)
}

func (t *Tap[T]) runHooks(ev TapEvent, log zerolog.Logger) {
	t.hooksMu.RLock()
	hooks := make([]func(TapEvent), len(t.hooks))
	copy(hooks, t.hooks)
	t.hooksMu.RUnlock()

	for _, fn := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("recovered", r).Str("kind", ev.Kind.String()).Msg("tap hook panicked")
				}
			}()
			fn(ev)
		}()
	}
}

// Subscriptions returns a snapshot of every subscription made through the
// tap, in subscription order.
func (t *Tap[T]) Subscriptions() []TapSubscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TapSubscription, len(t.subs))
	for i, s := range t.subs {
		out[i] = *s
	}
	return out
}

// Active returns the number of subscriptions that have not been released.
func (t *Tap[T]) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, s := range t.subs {
		if !s.Released {
			n++
		}
	}
	return n
}
