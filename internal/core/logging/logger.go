package logging

import (
	"github.com/rs/zerolog"
)

// Component derives a logger tagged with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions. The returned
// logger carries ContextHook so records written with .Ctx(ctx) pick up the
// test name stored by WithTestName.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
