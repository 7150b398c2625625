package worker

import (
	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/service"
)

// RegisterListeners attaches every event subscriber at startup: workflow
// rule evaluation and notifications.
func RegisterListeners(
	dispatcher events.Dispatcher,
	workflows *service.WorkflowService,
	notifications *service.NotificationService,
	logger *zap.Logger,
) {
	workflows.Register(dispatcher)
	notifications.Register(dispatcher)
	logger.Info("event listeners registered")
}
