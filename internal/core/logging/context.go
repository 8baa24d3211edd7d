package logging

import "context"

type contextKey string

const (
	testNameKey contextKey = "test"
)

// WithTestName adds the name of the running test to the context.
func WithTestName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, testNameKey, name)
}

// GetTestName retrieves the test name from the context.
// Returns empty string if not present.
func GetTestName(ctx context.Context) string {
	if name, ok := ctx.Value(testNameKey).(string); ok {
		return name
	}
	return ""
}
