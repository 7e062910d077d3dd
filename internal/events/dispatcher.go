package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Subscription identifies a registered handler for later removal.
type Subscription int

// Dispatcher allows event publication and subscription. Constructed
// explicitly and injected; there is no package-level instance.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler) Subscription
	Unsubscribe(sub Subscription)
}

type registration struct {
	id      Subscription
	eventT  EventType
	handler EventHandler
}

// inMemoryDispatcher is a synchronous in-process dispatcher. Handlers run
// in registration order within the publishing request; a failing or
// panicking handler is logged and never blocks the others.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    Subscription
	listeners map[EventType][]registration
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]registration),
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event. Delivery is
// best effort: no retries, no persistence of missed events.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	regs := append([]registration{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, reg := range regs {
		d.invoke(ctx, reg, event)
	}
	return nil
}

func (d *inMemoryDispatcher) invoke(ctx context.Context, reg registration, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Any("panic", r))
		}
	}()
	if err := reg.handler(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.listeners[eventType] = append(d.listeners[eventType], registration{
		id:      d.nextID,
		eventT:  eventType,
		handler: handler,
	})
	return d.nextID
}

// Unsubscribe removes a previously registered handler.
func (d *inMemoryDispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for eventType, regs := range d.listeners {
		for i, reg := range regs {
			if reg.id == sub {
				d.listeners[eventType] = append(regs[:i], regs[i+1:]...)
				return
			}
		}
	}
}
