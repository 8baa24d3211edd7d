package streamtest_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/streamprobe/pkg/rx"
	"github.com/colonyops/streamprobe/pkg/streamtest"
)

// manual is a producer driven by the test after subscription.
type manual struct {
	mu       sync.Mutex
	next     func(int)
	fail     func(error)
	complete func()
}

func (m *manual) Subscribe(next func(int), fail func(error), complete func()) rx.Cancellation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next, m.fail, m.complete = next, fail, complete
	return rx.NewCancellation(nil)
}

func (m *manual) emit(v int) {
	m.mu.Lock()
	next := m.next
	m.mu.Unlock()
	next(v)
}

func (m *manual) finish() {
	m.mu.Lock()
	complete := m.complete
	m.mu.Unlock()
	complete()
}

func TestAwait_ImmediateWhenTerminated(t *testing.T) {
	s := streamtest.NewSubscriber[int]()
	_, err := s.SubscribeTo(rx.Just(1))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.AwaitTerminalEvent(time.Hour))
	assert.Less(t, time.Since(start), time.Second)
}

func TestAwait_Timeout(t *testing.T) {
	s := streamtest.NewSubscriber[int]()
	s.Next(1)

	err := s.AwaitTerminalEvent(20 * time.Millisecond)
	require.ErrorIs(t, err, streamtest.ErrTimeout)

	var te *streamtest.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)
	assert.Equal(t, 1, te.Values)
	assert.Contains(t, err.Error(), "Timed out after 20ms")
}

func TestAwait_DefaultTimeout(t *testing.T) {
	s := streamtest.NewSubscriber[int](streamtest.WithAwaitTimeout(10 * time.Millisecond))

	var te *streamtest.TimeoutError
	require.ErrorAs(t, s.AwaitTerminalEvent(0), &te)
	assert.Equal(t, 10*time.Millisecond, te.Timeout)
}

func TestAwait_AsyncCompletion(t *testing.T) {
	p := &manual{}
	s := streamtest.NewSubscriber[int]()
	_, err := s.SubscribeTo(p)
	require.NoError(t, err)

	go func() {
		p.emit(1)
		p.emit(2)
		time.Sleep(10 * time.Millisecond)
		p.finish()
	}()

	require.NoError(t, s.AwaitTerminalEvent(5*time.Second))
	require.NoError(t, s.AssertValues(1, 2))
	require.NoError(t, s.AssertCompleted())
}

func TestAwait_RacingTerminalsResolveOnce(t *testing.T) {
	s := streamtest.NewSubscriber[int]()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.Complete() }()
	go func() { defer wg.Done(); s.Error(errors.New("racing")) }()

	require.NoError(t, s.AwaitTerminalEvent(5*time.Second))
	wg.Wait()

	h := s.History()
	assert.Equal(t, 1, h.Completions)
	assert.Len(t, h.Errors, 1)
	require.NoError(t, s.AwaitTerminalEvent(time.Millisecond))
}

func TestAwait_ReleasedByReset(t *testing.T) {
	s := streamtest.NewSubscriber[int]()

	done := make(chan error, 1)
	go func() { done <- s.AwaitTerminalEvent(5 * time.Second) }()

	// give the waiter time to block
	time.Sleep(20 * time.Millisecond)
	s.Reset()

	select {
	case err := <-done:
		require.ErrorIs(t, err, streamtest.ErrReset)
	case <-time.After(2 * time.Second):
		t.Fatal("await was not released by reset")
	}
}

func TestAwait_NotReleasedByUnsubscribe(t *testing.T) {
	s := streamtest.NewSubscriber[int]()
	require.NoError(t, s.OnSubscribe(rx.NewCancellation(nil)))

	done := make(chan error, 1)
	go func() { done <- s.AwaitTerminalEvent(50 * time.Millisecond) }()

	time.Sleep(10 * time.Millisecond)
	s.Unsubscribe()

	err := <-done
	require.ErrorIs(t, err, streamtest.ErrTimeout)
}

func TestAwait_ContextCancelled(t *testing.T) {
	s := streamtest.NewSubscriber[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.AwaitTerminalEventContext(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwait_LogsTestName(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s := streamtest.NewSubscriber[int](streamtest.WithLogger(l), streamtest.WithName("probe"))
	err := s.AwaitTerminalEventContext(streamtest.TestContext(t), time.Millisecond)
	require.ErrorIs(t, err, streamtest.ErrTimeout)

	out := buf.String()
	assert.Contains(t, out, `"test":"TestAwait_LogsTestName"`)
	assert.Contains(t, out, `"cmp":"streamtest.subscriber"`)
	assert.Contains(t, out, `"name":"probe"`)
}
