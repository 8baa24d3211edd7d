// Package rx defines the push-based stream contract consumed by streamtest.
//
// It is deliberately small: a Producer accepts three callback slots and returns
// a Cancellation. Operators, schedulers and subjects belong to whatever stream
// library is under test, not here.
package rx

// Cancellation is a producer-owned handle used to release a subscription.
type Cancellation interface {
	// Release asks the producer to stop emitting and free its resources.
	Release()
	// Released reports whether Release has been called.
	Released() bool
}

// Producer is any push-based source of values, errors and completion.
//
// A well-behaved producer calls at most one of fail or complete, and never
// calls next after either of them.
type Producer[T any] interface {
	Subscribe(next func(T), fail func(error), complete func()) Cancellation
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc[T any] func(next func(T), fail func(error), complete func()) Cancellation

// Subscribe calls f(next, fail, complete).
func (f ProducerFunc[T]) Subscribe(next func(T), fail func(error), complete func()) Cancellation {
	return f(next, fail, complete)
}

// Observer is the capability set shared by every consumer variant.
type Observer[T any] interface {
	Next(T)
	Error(error)
	Complete()
}

// SuccessObserver receives the single value of a single-value producer.
type SuccessObserver[T any] interface {
	Success(T)
}

// Subscribe subscribes o to p using o's handlers.
func Subscribe[T any](p Producer[T], o Observer[T]) Cancellation {
	return p.Subscribe(o.Next, o.Error, o.Complete)
}
