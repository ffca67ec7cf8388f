package worker

import (
	"context"

	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/observability"
	"github.com/estatehub/property-moderation/internal/service"
)

// StartNotificationWorker registers notification handlers and starts the
// publish loop. Callers stop it with NotificationService.Stop.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	notificationService.Start()
}

// StartMetricsWorker counts every moderation event by type.
func StartMetricsWorker(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	if dispatcher == nil || metrics == nil {
		return
	}
	events.SubscribeAll(dispatcher, func(_ context.Context, e events.Event) error {
		metrics.RecordModeration(string(e.Type))
		return nil
	})
}
