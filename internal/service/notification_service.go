package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campus-kit/helpdesk-service/internal/config"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/events"
)

// NotificationService turns ticket events into outbound notifications.
// Delivery is best effort and synchronous with the triggering request;
// a failed notification never fails the mutation that produced it.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{cfg: cfg, logger: logger}
}

// HandleTicketCreated notifies on ticket creation.
func (s *NotificationService) HandleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	subject := fmt.Sprintf("[%s] Ticket opened: %s", payload.HumanID, payload.Title)
	s.logger.Info("ticket created notification",
		zap.String("ticket_id", event.TicketID),
		zap.String("human_id", payload.HumanID),
		zap.String("category", string(payload.Category)),
		zap.String("priority", string(payload.Priority)))
	s.sendEmailNotificationStub(ctx, event, subject)
	s.sendWebhookNotificationStub(ctx, event)
	return nil
}

// HandleTicketUpdated notifies on content edits, comments, and transitions.
func (s *NotificationService) HandleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	subject := fmt.Sprintf("[%s] Ticket updated", payload.HumanID)
	if payload.NewStatus != "" {
		subject = fmt.Sprintf("[%s] Status changed to %s", payload.HumanID, payload.NewStatus.Label())
	}
	s.logger.Info("ticket updated notification",
		zap.String("ticket_id", event.TicketID),
		zap.String("human_id", payload.HumanID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)),
		zap.String("note", payload.Note))
	s.sendEmailNotificationStub(ctx, event, subject)
	s.sendWebhookNotificationStub(ctx, event)
	return nil
}

// HandleTicketResolved notifies on resolution.
func (s *NotificationService) HandleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	subject := fmt.Sprintf("[%s] Ticket resolved", payload.HumanID)
	s.logger.Info("ticket resolved notification",
		zap.String("ticket_id", event.TicketID),
		zap.String("human_id", payload.HumanID),
		zap.Time("resolved_at", payload.ResolvedAt))
	s.sendEmailNotificationStub(ctx, event, subject)
	s.sendWebhookNotificationStub(ctx, event)
	return nil
}

// sendEmailNotificationStub stands in for an SMTP or provider integration.
func (s *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, subject string) {
	if s.cfg.EmailFrom == "" {
		return
	}
	recipient := "unknown"
	if event.Ticket != nil {
		recipient = event.Ticket.CreatedBy
	} else if event.Actor.Type == domain.SubjectTypeUser && event.Actor.UserID != nil {
		recipient = *event.Actor.UserID
	}
	s.logger.Debug("email notification (stub)",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("recipient", recipient),
		zap.String("subject", subject))
}

// sendWebhookNotificationStub stands in for an HTTP webhook integration.
func (s *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if s.cfg.WebhookURL == "" {
		return
	}
	s.logger.Debug("webhook notification (stub)",
		zap.String("url", s.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
}
