package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(EventOrderPlaced, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	d.Subscribe(EventOrderPlaced, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventOTPIssued, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventOrderPlaced, "u1", time.Now(), OrderPlacedPayload{OrderID: "o1"}))
	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), New(EventOTPIssued, "u1", time.Now(), nil)))
}

func TestNewAssignsID(t *testing.T) {
	a := New(EventOTPIssued, "u1", time.Now(), nil)
	b := New(EventOTPIssued, "u1", time.Now(), nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventOTPIssued, func(ctx context.Context, e Event) error {
		panic("nil template")
	})
	d.Subscribe(EventOTPIssued, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventOTPIssued, "u1", time.Now(), nil))
	assert.ErrorContains(t, err, "nil template")
	assert.True(t, delivered)
}

func TestSubscribedIsSorted(t *testing.T) {
	d := NewInMemoryDispatcher()
	noop := func(context.Context, Event) error { return nil }
	d.Subscribe(EventOrderPlaced, noop)
	d.Subscribe(EventOTPIssued, noop)

	assert.Equal(t, []EventType{EventOrderPlaced, EventOTPIssued}, d.Subscribed())
}
