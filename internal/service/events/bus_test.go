package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolgle/internal/domain/models/governance"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBus_PublishRunsSubscribersInOrder(t *testing.T) {
	bus := NewBus(testLogger())
	var calls []string

	bus.Subscribe("first", func(ctx context.Context, ev governance.Event) error {
		calls = append(calls, "first:"+string(ev.Type))
		return nil
	})
	bus.Subscribe("second", func(ctx context.Context, ev governance.Event) error {
		calls = append(calls, "second:"+string(ev.Type))
		return nil
	})

	err := bus.Publish(context.Background(), governance.Event{Type: governance.EventPackSubmitted})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:pack.submitted", "second:pack.submitted"}, calls)
}

func TestBus_PublishStopsOnError(t *testing.T) {
	bus := NewBus(testLogger())
	boom := errors.New("boom")
	secondCalled := false

	bus.Subscribe("timeline", func(ctx context.Context, ev governance.Event) error { return boom })
	bus.Subscribe("after", func(ctx context.Context, ev governance.Event) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(context.Background(), governance.Event{Type: governance.EventPackApproved})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "timeline handling pack.approved")
	assert.False(t, secondCalled)
}

func TestBus_AnnounceSwallowsFailures(t *testing.T) {
	bus := NewBus(testLogger())
	reached := false

	bus.Observe("failing", func(ctx context.Context, ev governance.Event) error { return errors.New("smtp down") })
	bus.Observe("panicking", func(ctx context.Context, ev governance.Event) error { panic("nil map") })
	bus.Observe("last", func(ctx context.Context, ev governance.Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Announce(context.Background(), governance.Event{Type: governance.EventPackCreated})
	})
	assert.True(t, reached)
}

func TestBus_ObserversNotRunByPublish(t *testing.T) {
	bus := NewBus(testLogger())
	observed := false
	bus.Observe("notifier", func(ctx context.Context, ev governance.Event) error {
		observed = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), governance.Event{Type: governance.EventPackCreated}))
	assert.False(t, observed)
}
