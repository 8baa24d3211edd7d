package streamtest

import (
	"sync"

	"github.com/colonyops/streamprobe/pkg/rx"
)

// binding holds the single cancellation handle a consumer may own. It is
// claimed before the producer is called so that a concurrent second
// SubscribeTo fails instead of subscribing twice.
type binding struct {
	handle  rx.Cancellation
	claimed bool
}

func (b *binding) claim() error {
	if b.claimed {
		return ErrSubscriptionAlreadySet
	}
	b.claimed = true
	return nil
}

// set stores h after a successful claim.
func (b *binding) set(h rx.Cancellation) error {
	if h == nil {
		return ErrNilCancellation
	}
	b.handle = h
	return nil
}

// bind claims and stores h in one step.
func (b *binding) bind(h rx.Cancellation) error {
	if h == nil {
		return ErrNilCancellation
	}
	if err := b.claim(); err != nil {
		return err
	}
	b.handle = h
	return nil
}

// signal is a one-shot notification, safe to fire more than once.
type signal struct {
	ch   chan struct{}
	once sync.Once
}

func newSignal() *signal {
	return &signal{ch: make(chan struct{})}
}

func (s *signal) fire() {
	s.once.Do(func() { close(s.ch) })
}

func (s *signal) done() <-chan struct{} {
	return s.ch
}

func (s *signal) fired() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}
