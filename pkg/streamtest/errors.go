package streamtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/streamprobe/pkg/rx"
)

var (
	// ErrSubscriptionAlreadySet is returned when a consumer is bound to a second subscription.
	ErrSubscriptionAlreadySet = errors.New("subscription already set")

	// ErrNilCancellation is returned when a producer hands back a nil cancellation handle.
	ErrNilCancellation = errors.New("nil cancellation handle")

	// ErrNotSubscribed is returned by AssertSubscribed when no handle was ever bound.
	ErrNotSubscribed = errors.New("expected a subscription, but none was set")

	// ErrAssertion is matched by every *AssertionError.
	ErrAssertion = errors.New("assertion failed")

	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("timed out waiting for terminal event")

	// ErrReset is returned by AwaitTerminalEvent when Reset runs while it waits.
	ErrReset = errors.New("subscriber reset while waiting for terminal event")
)

// AssertionError describes a failed assertion in terms of expected versus
// actual recorded state.
type AssertionError struct {
	// Assertion is the name of the helper that failed, e.g. "AssertValues".
	Assertion string
	Message   string
}

func newAssertionError(assertion, format string, args ...any) *AssertionError {
	return &AssertionError{Assertion: assertion, Message: fmt.Sprintf(format, args...)}
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}

// TimeoutError is returned when no terminal notification arrives in time.
type TimeoutError struct {
	Timeout     time.Duration
	Values      int
	Errors      int
	Completions int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"Timed out after %s waiting for a terminal event (values=%d, errors=%d, completions=%d)",
		e.Timeout, e.Values, e.Errors, e.Completions,
	)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// DelegateError records a panic raised by a delegate while a notification was
// being forwarded to it.
type DelegateError struct {
	Recovered any
	Kind      rx.Kind
}

func (e *DelegateError) Error() string {
	return fmt.Sprintf("delegate panicked handling %s: %v", e.Kind, e.Recovered)
}

// Unwrap returns the recovered value when it is an error.
func (e *DelegateError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}
