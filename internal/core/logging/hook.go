package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts the test name from context and adds it to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if name := GetTestName(ctx); name != "" {
		e.Str("test", name)
	}
}
