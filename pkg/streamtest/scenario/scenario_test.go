package scenario_test

import (
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/streamprobe/pkg/rx"
	"github.com/colonyops/streamprobe/pkg/streamtest"
	"github.com/colonyops/streamprobe/pkg/streamtest/scenario"
)

func TestDiscover_Sorted(t *testing.T) {
	paths, err := scenario.Discover(os.DirFS("testdata"), "**/*.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"basic/points.yaml",
		"basic/three.yaml",
		"failures/immediate.yaml",
		"failures/late-value.yaml",
	}, paths)
}

func TestDiscover_BadPattern(t *testing.T) {
	_, err := scenario.Discover(os.DirFS("testdata"), "[")
	require.Error(t, err)
}

func TestLoad_DefaultsNameToPath(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "failures/immediate.yaml")
	require.NoError(t, err)

	assert.Equal(t, "failures/immediate.yaml", s.Name)
	assert.Equal(t, "failures/immediate.yaml", s.Path)
	require.Len(t, s.Steps, 1)
}

func TestLoadAll(t *testing.T) {
	all, err := scenario.LoadAll(os.DirFS("testdata"), "basic/*.yaml")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "points", all[0].Name)
	assert.Equal(t, "three-then-complete", all[1].Name)
}

func TestProducer_RoundTrip(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "basic/three.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[int](s)
	require.NoError(t, err)
	assert.Equal(t, "three-then-complete", script.Name())

	sub := streamtest.NewSubscriber[int]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	require.NoError(t, sub.AssertValues(1, 2, 3))
	require.NoError(t, sub.AssertCompleted())
	require.NoError(t, sub.AssertNoErrors())
}

type point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func TestProducer_TypedDecoding(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "basic/points.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[point](s)
	require.NoError(t, err)

	sub := streamtest.NewSubscriber[point]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	require.NoError(t, sub.AssertValues(point{1, 2}, point{3, 4}))
}

func TestProducer_DecodeError(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "basic/points.yaml")
	require.NoError(t, err)

	_, err = scenario.Producer[int](s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].next")
}

func TestProducer_ErrorStep(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "failures/immediate.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[int](s)
	require.NoError(t, err)

	sub := streamtest.NewSubscriber[int]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	assert.EqualError(t, sub.AssertCompleted(), "Expected exactly 1 completion event, but received 0")
	err = sub.AssertNoErrors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestProducer_ReplaysMisbehaviour(t *testing.T) {
	s, err := scenario.Load(os.DirFS("testdata"), "failures/late-value.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[int](s)
	require.NoError(t, err)
	assert.Equal(t, []rx.Notification[int]{rx.Next(1), rx.Complete[int](), rx.Next(2)}, script.Notifications())

	sub := streamtest.NewSubscriber[int]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	require.NoError(t, sub.AssertValues(1))
	assert.Equal(t, 1, sub.Ignored())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"no steps", "name: empty\n", "steps"},
		{"empty step", "steps:\n  - {}\n", "steps[0]"},
		{"ambiguous step", "steps:\n  - next: 1\n    complete: true\n", "steps[0]"},
		{"negative interval", "interval: -1s\nsteps:\n  - complete: true\n", "interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := scenario.Parse([]byte("steps: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestScript_Async(t *testing.T) {
	fsys := fstest.MapFS{
		"async.yaml": {Data: []byte("async: true\ninterval: 1ms\nsteps:\n  - next: a\n  - next: b\n  - complete: true\n")},
	}
	s, err := scenario.Load(fsys, "async.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[string](s)
	require.NoError(t, err)

	sub := streamtest.NewSubscriber[string]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	require.NoError(t, sub.AwaitTerminalEvent(5*time.Second))
	require.NoError(t, sub.AssertValues("a", "b"))
	require.NoError(t, sub.AssertCompleted())
}

func TestScript_AsyncHonoursRelease(t *testing.T) {
	fsys := fstest.MapFS{
		"slow.yaml": {Data: []byte("async: true\ninterval: 50ms\nsteps:\n  - next: 1\n  - next: 2\n  - next: 3\n  - complete: true\n")},
	}
	s, err := scenario.Load(fsys, "slow.yaml")
	require.NoError(t, err)

	script, err := scenario.Producer[int](s)
	require.NoError(t, err)

	sub := streamtest.NewSubscriber[int]()
	_, err = sub.SubscribeTo(script)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(sub.Values()) >= 1 }, 2*time.Second, time.Millisecond)
	sub.Unsubscribe()

	err = sub.AwaitTerminalEvent(250 * time.Millisecond)
	require.ErrorIs(t, err, streamtest.ErrTimeout)
	assert.Less(t, len(sub.Values()), 3)
	assert.Zero(t, sub.Completions())
}
