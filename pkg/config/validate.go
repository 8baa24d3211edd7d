package config

import (
	"errors"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/streamprobe/pkg/logutils"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("log_level", c.LogLevel, validLevel),
		criterio.Run("await_timeout", c.AwaitTimeout, positiveDuration),
		criterio.Run("demand_limit", c.DemandLimit, nonNegative),
	)
}

// Logger builds the logger described by LogLevel and LogFile. The returned
// closer must be called to release the log file.
func (c *Config) Logger() (zerolog.Logger, func(), error) {
	return logutils.New(c.LogLevel, c.LogFile)
}

func validLevel(level string) error {
	_, err := logutils.ParseLevel(level)
	return err
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegative(n int64) error {
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
