package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/events"
)

// NotificationService turns ticket events into notifications. Delivery is
// currently structured logging; the listener shape matches what a mail or
// webhook integration would use.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService wires the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// Register subscribes the notification listeners.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketEvent("ticket created"))
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onTicketEvent("ticket status changed"))
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketEvent("ticket assigned"))
}

func (s *NotificationService) onTicketEvent(message string) events.Handler {
	return func(_ context.Context, event events.Event) error {
		s.logger.Info("notification: "+message,
			zap.String("event_id", event.ID),
			zap.String("actor_id", event.ActorID),
			zap.Any("ticket_key", event.Payload["key"]),
			zap.Any("status", event.Payload["status"]),
			zap.Any("assignees", event.Payload["assignees"]))
		return nil
	}
}
