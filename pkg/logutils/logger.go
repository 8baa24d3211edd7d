package logutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidLevel is returned for a level string outside debug, info, error, none.
var ErrInvalidLevel = errors.New("invalid log level")

// Levels lists the recognised level names, most verbose first.
var Levels = []string{"debug", "info", "error", "none"}

// ParseLevel maps a level name to a zerolog level. Filtering is hierarchical:
// "info" also emits error records, and "none" disables everything.
// Matching is case-insensitive; the empty string means "info".
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "none":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidLevel, level, strings.Join(Levels, ", "))
	}
}

// New returns a new logger that writes JSON to the specified file.
// If file is empty, logs are written to stdout.
//
// The level parameter can be one of: debug, info, error, none.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	if lvl == zerolog.Disabled {
		return zerolog.Nop(), closer, nil
	}

	// File Setup
	writer := os.Stdout
	if file != "" {
		logsDir := filepath.Dir(file)
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		osFile, err := os.Create(file)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = osFile.Close() }
		writer = osFile
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}
