package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventContactCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ResourceID)
		return nil
	})
	d.Subscribe(EventContactCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ResourceID)
		return nil
	})
	d.Subscribe(EventContactDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventContactCreated, ResourceID: "c-1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first:c-1", "second:c-1"}, got)
}

func TestInMemoryDispatcher_ContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	called := false
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { return boom })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered})
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventContactUpdated}))
}

func TestInMemoryDispatcher_RecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventContactDeleted, func(context.Context, Event) error { panic("bad handler") })
	d.Subscribe(EventContactDeleted, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventContactDeleted})
	assert.ErrorContains(t, err, "panicked")
	assert.True(t, called)
}

func TestInMemoryDispatcher_StopsOnCancelledContext(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventContactCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Publish(ctx, Event{Type: EventContactCreated})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
