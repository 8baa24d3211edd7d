package streamtest

import (
	"errors"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/streamprobe/internal/core/logging"
)

// AssertCompleted fails unless exactly one completion was received. A stream
// that errored, or completed zero or several times, fails.
func (s *Subscriber[T]) AssertCompleted() error {
	n := s.Completions()
	if n != 1 {
		return newAssertionError("AssertCompleted", "Expected exactly 1 completion event, but received %d", n)
	}
	return nil
}

// AssertNoErrors fails if any error was recorded. The message names every
// recorded cause.
func (s *Subscriber[T]) AssertNoErrors() error {
	errs := s.Errors()
	if len(errs) == 0 {
		return nil
	}
	return newAssertionError("AssertNoErrors", "Expected no errors, but received %d: %s", len(errs), renderValues(errs))
}

// AssertValues fails unless the recorded values equal expected in length and,
// element by element, in deep equality. A mismatch reports the first
// offending index.
func (s *Subscriber[T]) AssertValues(expected ...T) error {
	actual := s.Values()

	if len(actual) != len(expected) {
		return newAssertionError("AssertValues",
			"Expected %d values %s, but received %d values %s",
			len(expected), renderValues(expected), len(actual), renderValues(actual))
	}

	for i := range expected {
		if !assert.ObjectsAreEqual(expected[i], actual[i]) {
			return newAssertionError("AssertValues",
				"Value mismatch at index %d: expected %s, but received %s",
				i, logging.Render(expected[i]), logging.Render(actual[i]))
		}
	}
	return nil
}

// AssertValueCount fails unless exactly n values were recorded.
func (s *Subscriber[T]) AssertValueCount(n int) error {
	if got := len(s.Values()); got != n {
		return newAssertionError("AssertValueCount", "Expected %d values, but received %d", n, got)
	}
	return nil
}

// AssertErrorIs fails unless some recorded error matches target with
// errors.Is.
func (s *Subscriber[T]) AssertErrorIs(target error) error {
	errs := s.Errors()
	for _, err := range errs {
		if errors.Is(err, target) {
			return nil
		}
	}
	return newAssertionError("AssertErrorIs",
		"Expected an error matching %s, but received %d: %s",
		logging.Render(target), len(errs), renderValues(errs))
}

// AssertTerminated fails unless an error or completion was received.
func (s *Subscriber[T]) AssertTerminated() error {
	h := s.History()
	if !h.Terminated {
		return newAssertionError("AssertTerminated",
			"Expected a terminal event, but received none (values=%d)", len(h.Values))
	}
	return nil
}

func renderValues[T any](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = logging.Render(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
