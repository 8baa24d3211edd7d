package streamtest_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/streamprobe/pkg/rx"
	"github.com/colonyops/streamprobe/pkg/streamtest"
)

func TestTap_PassesThrough(t *testing.T) {
	tap := streamtest.NewTap("numbers", rx.Just(1, 2, 3))

	s := streamtest.NewSubscriber[int]()
	_, err := s.SubscribeTo(tap)
	require.NoError(t, err)

	require.NoError(t, s.AssertValues(1, 2, 3))
	require.NoError(t, s.AssertCompleted())

	subs := tap.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, 1, subs[0].Seq)
	assert.Equal(t, 3, subs[0].Values)
	assert.Equal(t, 1, subs[0].Completions)
	assert.Zero(t, subs[0].Errors)
}

func TestTap_IDsUniquePerSubscription(t *testing.T) {
	tap := streamtest.NewTap("fail", rx.Fail[int](errors.New("boom")))

	for range 3 {
		_, err := streamtest.NewSubscriber[int]().SubscribeTo(tap)
		require.NoError(t, err)
	}

	subs := tap.Subscriptions()
	require.Len(t, subs, 3)

	seen := map[string]bool{}
	for i, sub := range subs {
		assert.Equal(t, i+1, sub.Seq)
		assert.Equal(t, 1, sub.Errors)
		assert.False(t, seen[sub.ID.String()], "duplicate id %s", sub.ID)
		seen[sub.ID.String()] = true
	}
}

func TestTap_CountersAreInstanceScoped(t *testing.T) {
	a := streamtest.NewTap("a", rx.Just(1))
	b := streamtest.NewTap("b", rx.Just(1))

	_, err := streamtest.NewSubscriber[int]().SubscribeTo(a)
	require.NoError(t, err)

	assert.Len(t, a.Subscriptions(), 1)
	assert.Empty(t, b.Subscriptions())
}

func TestTap_Release(t *testing.T) {
	released := 0
	src := rx.ProducerFunc[int](func(func(int), func(error), func()) rx.Cancellation {
		return rx.NewCancellation(func() { released++ })
	})
	tap := streamtest.NewTap[int]("pending", src)

	s := streamtest.NewSubscriber[int]()
	_, err := s.SubscribeTo(tap)
	require.NoError(t, err)
	assert.Equal(t, 1, tap.Active())

	s.Unsubscribe()

	assert.Equal(t, 1, released)
	assert.Zero(t, tap.Active())
	assert.True(t, tap.Subscriptions()[0].Released)
}

func TestTap_HooksIsolatePanics(t *testing.T) {
	var buf bytes.Buffer
	tap := streamtest.NewTap("hooked", rx.Just("x"), streamtest.WithLogger(zerolog.New(&buf)))

	var events []streamtest.TapEvent
	tap.OnEvent(func(streamtest.TapEvent) { panic("hook failure") })
	tap.OnEvent(func(ev streamtest.TapEvent) { events = append(events, ev) })

	s := streamtest.NewSubscriber[string]()
	require.NotPanics(t, func() {
		_, err := s.SubscribeTo(tap)
		require.NoError(t, err)
	})

	require.NoError(t, s.AssertValues("x"))
	require.Len(t, events, 2)
	assert.Equal(t, rx.KindNext, events[0].Kind)
	assert.Equal(t, "x", events[0].Payload)
	assert.Equal(t, "hooked", events[0].Tap)
	assert.Equal(t, rx.KindComplete, events[1].Kind)
	assert.Contains(t, buf.String(), "tap hook panicked")
}
