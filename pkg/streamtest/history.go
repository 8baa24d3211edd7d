package streamtest

import (
	"slices"
	"time"
)

// History is a snapshot of everything a Subscriber has recorded.
type History[T any] struct {
	// Values in arrival order, after demand limiting.
	Values []T
	// Errors in arrival order. Normally at most one.
	Errors []error
	// Completions counts completion notifications, including late ones.
	Completions int
	// Terminated is set by the first error or completion.
	Terminated bool
	// Marker is an opaque, time-ordered token refreshed on every recorded
	// event. Useful for correlating a snapshot with log output.
	Marker string
	// LastEventAt is when the last recorded event arrived.
	LastEventAt time.Time
}

func (h History[T]) clone() History[T] {
	h.Values = slices.Clone(h.Values)
	h.Errors = slices.Clone(h.Errors)
	return h
}
