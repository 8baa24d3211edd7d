package rx

// Funcs adapts optional callbacks to Observer and SuccessObserver.
// Nil fields are skipped, so a delegate may handle only the notifications it
// cares about.
type Funcs[T any] struct {
	OnNext     func(T)
	OnError    func(error)
	OnComplete func()
	OnSuccess  func(T)
}

// Next calls OnNext if set.
func (f Funcs[T]) Next(v T) {
	if f.OnNext != nil {
		f.OnNext(v)
	}
}

// Error calls OnError if set.
func (f Funcs[T]) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}

// Complete calls OnComplete if set.
func (f Funcs[T]) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

// Success calls OnSuccess if set, falling back to OnNext.
func (f Funcs[T]) Success(v T) {
	switch {
	case f.OnSuccess != nil:
		f.OnSuccess(v)
	case f.OnNext != nil:
		f.OnNext(v)
	}
}

// FromNotifications returns a producer that replays ns synchronously on every
// subscription, exactly as given: notifications after a terminal one are
// still delivered, which makes it usable for misbehaving-producer fixtures.
func FromNotifications[T any](ns ...Notification[T]) Producer[T] {
	replay := make([]Notification[T], len(ns))
	copy(replay, ns)

	return ProducerFunc[T](func(next func(T), fail func(error), complete func()) Cancellation {
		c := NewCancellation(nil)
		o := Funcs[T]{OnNext: next, OnError: fail, OnComplete: complete}
		for _, n := range replay {
			n.Accept(o)
		}
		return c
	})
}

// Just returns a producer that emits values and then completes.
func Just[T any](values ...T) Producer[T] {
	ns := make([]Notification[T], 0, len(values)+1)
	for _, v := range values {
		ns = append(ns, Next(v))
	}
	ns = append(ns, Complete[T]())
	return FromNotifications(ns...)
}

// Fail returns a producer that emits err immediately.
func Fail[T any](err error) Producer[T] {
	return FromNotifications(Error[T](err))
}
