package rx

import "fmt"

// Kind describes which case of a Notification is populated.
type Kind uint8

const (
	// KindNext carries a value.
	KindNext Kind = iota

	// KindError carries the cause that terminated the stream.
	KindError

	// KindComplete marks successful termination.
	KindComplete
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsTerminal reports whether the kind ends a stream.
func (k Kind) IsTerminal() bool {
	return k == KindError || k == KindComplete
}

// Notification is a single emission: a value, an error or completion.
//
// Only the field matching Kind is meaningful.
type Notification[T any] struct {
	Value T
	Err   error
	Kind  Kind
}

// Next builds a value notification.
func Next[T any](v T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: v}
}

// Error builds an error notification.
func Error[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// Complete builds a completion notification.
func Complete[T any]() Notification[T] {
	return Notification[T]{Kind: KindComplete}
}

// Accept dispatches the notification to the matching handler of o.
func (n Notification[T]) Accept(o Observer[T]) {
	switch n.Kind {
	case KindNext:
		o.Next(n.Value)
	case KindError:
		o.Error(n.Err)
	case KindComplete:
		o.Complete()
	}
}

// String renders the notification for diagnostics.
func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}
