package streamtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/streamprobe/pkg/config"
)

// Option configures an Observer, Subscriber or Tap. Options that do not apply
// to a type are ignored by it (Observer has no demand limit, for example).
type Option func(*settings)

type settings struct {
	log                zerolog.Logger
	now                func() time.Time
	marker             func() string
	name               string
	limit              int64
	awaitTimeout       time.Duration
	destructiveDispose bool
}

func newSettings(opts []Option) settings {
	s := settings{
		log:          zerolog.Nop(),
		now:          time.Now,
		marker:       newMarker,
		awaitTimeout: config.DefaultAwaitTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.limit < 0 {
		s.limit = 0
	}
	if s.awaitTimeout <= 0 {
		s.awaitTimeout = config.DefaultAwaitTimeout
	}
	return s
}

// newMarker returns a time-ordered UUIDv7 string.
func newMarker() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// WithLogger sets the logger that receives diagnostic records. Defaults to a
// no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

// WithName labels log records with name, which helps when several consumers
// share one logger.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithDemandLimit caps the number of values a Subscriber processes. Values
// beyond the limit are dropped. n <= 0 means unlimited.
func WithDemandLimit(n int64) Option {
	return func(s *settings) {
		s.limit = n
	}
}

// WithAwaitTimeout sets the timeout used by AwaitTerminalEvent when it is
// called with a non-positive timeout.
func WithAwaitTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.awaitTimeout = d
	}
}

// WithDestructiveDispose makes Subscriber.Dispose and Unsubscribe also clear
// recorded history, as Reset does. By default history survives disposal.
func WithDestructiveDispose() Option {
	return func(s *settings) {
		s.destructiveDispose = true
	}
}

// WithClock replaces time.Now for log entry and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConfig applies the demand limit, await timeout and dispose mode from a
// loaded config. The logger is not applied; build it with cfg.Logger and pass
// it through WithLogger so the caller owns the log file.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		s.limit = cfg.DemandLimit
		s.awaitTimeout = cfg.AwaitTimeout
		s.destructiveDispose = cfg.DestructiveDispose
	}
}
