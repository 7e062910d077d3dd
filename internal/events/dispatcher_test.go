package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishInvokesHandlersInRegistrationOrder(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var order []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishSkipsUnrelatedEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	called := 0
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		called++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketUpdated}))
	assert.Zero(t, called)
}

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var delivered []string
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		delivered = append(delivered, "failing")
		return errors.New("smtp unreachable")
	})
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		delivered = append(delivered, "panicking")
		panic("template nil")
	})
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		delivered = append(delivered, "healthy")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketUpdated, TicketID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"failing", "panicking", "healthy"}, delivered)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	calls := 0
	sub := d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	d.Unsubscribe(sub)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))

	assert.Equal(t, 1, calls)
}
