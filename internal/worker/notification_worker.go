package worker

import (
	"go.uber.org/zap"

	"github.com/campus-kit/helpdesk-service/internal/events"
	"github.com/campus-kit/helpdesk-service/internal/service"
)

// NotificationWorker wires the notification service into the event
// dispatcher and holds the subscriptions for shutdown.
type NotificationWorker struct {
	dispatcher    events.Dispatcher
	subscriptions []events.Subscription
	logger        *zap.Logger
}

// StartNotificationWorker registers notification handlers for every ticket
// event type and returns the running worker.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{dispatcher: dispatcher, logger: logger}
	w.subscriptions = append(w.subscriptions,
		dispatcher.Subscribe(events.EventTicketCreated, notifications.HandleTicketCreated),
		dispatcher.Subscribe(events.EventTicketUpdated, notifications.HandleTicketUpdated),
		dispatcher.Subscribe(events.EventTicketResolved, notifications.HandleTicketResolved),
	)
	logger.Info("notification worker started", zap.Int("subscriptions", len(w.subscriptions)))
	return w
}

// Stop removes all registered handlers.
func (w *NotificationWorker) Stop() {
	for _, sub := range w.subscriptions {
		w.dispatcher.Unsubscribe(sub)
	}
	w.subscriptions = nil
	w.logger.Info("notification worker stopped")
}
