package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/streamprobe/pkg/rx"
)

// Script is a producer that replays a scenario on every subscription.
type Script[T any] struct {
	name     string
	async    bool
	interval time.Duration
	steps    []rx.Notification[T]
}

var _ rx.Producer[int] = (*Script[int])(nil)

// Producer decodes every next step of s into T and returns a Script.
func Producer[T any](s Scenario) (*Script[T], error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}

	steps := make([]rx.Notification[T], 0, len(s.Steps))
	for i, step := range s.Steps {
		switch {
		case step.Next != nil:
			var v T
			if err := step.Next.Decode(&v); err != nil {
				return nil, fmt.Errorf("scenario %q: decode steps[%d].next: %w", s.Name, i, err)
			}
			steps = append(steps, rx.Next(v))
		case step.Error != nil:
			steps = append(steps, rx.Error[T](errors.New(*step.Error)))
		default:
			steps = append(steps, rx.Complete[T]())
		}
	}

	return &Script[T]{
		name:     s.Name,
		async:    s.Async,
		interval: s.Interval,
		steps:    steps,
	}, nil
}

// Name returns the scenario name.
func (sc *Script[T]) Name() string {
	return sc.name
}

// Notifications returns the decoded steps.
func (sc *Script[T]) Notifications() []rx.Notification[T] {
	out := make([]rx.Notification[T], len(sc.steps))
	copy(out, sc.steps)
	return out
}

// Subscribe replays the script. Synchronous scripts emit before Subscribe
// returns; async scripts emit from a goroutine, waiting interval between
// steps. Releasing the returned handle stops further emission.
func (sc *Script[T]) Subscribe(next func(T), fail func(error), complete func()) rx.Cancellation {
	stop := make(chan struct{})
	c := rx.NewCancellation(func() { close(stop) })

	o := rx.Funcs[T]{OnNext: next, OnError: fail, OnComplete: complete}

	if !sc.async {
		for _, n := range sc.steps {
			if c.Released() {
				break
			}
			n.Accept(o)
		}
		return c
	}

	go sc.run(o, stop)
	return c
}

func (sc *Script[T]) run(o rx.Observer[T], stop <-chan struct{}) {
	for i, n := range sc.steps {
		if i > 0 && sc.interval > 0 {
			t := time.NewTimer(sc.interval)
			select {
			case <-stop:
				t.Stop()
				return
			case <-t.C:
			}
		}

		select {
		case <-stop:
			return
		default:
		}
		n.Accept(o)
	}
}
