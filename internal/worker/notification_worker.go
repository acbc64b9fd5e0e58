package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the event
// dispatcher. Delivery runs inline with Publish; SMS and email are stubs.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	subscribed := notificationService.RegisterHandlers()
	if logger == nil {
		return
	}
	names := make([]string, 0, len(subscribed))
	for _, eventType := range subscribed {
		names = append(names, string(eventType))
	}
	logger.Info("notification handlers registered", zap.Strings("events", names))
}
