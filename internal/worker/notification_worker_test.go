package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/observability"
	"github.com/estatehub/property-moderation/internal/persistence"
	"github.com/estatehub/property-moderation/internal/service"
)

func TestNotificationWorkerPublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb := persistence.NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(rdb.Close)

	sub := rdb.Client.Subscribe(ctx, "moderation.events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, rdb, zap.NewNop(), config.NotificationConfig{RedisChannel: "moderation.events"})
	StartNotificationWorker(notifications)
	t.Cleanup(notifications.Stop)

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:      "evt-1",
		Type:    events.EventAssignmentsReset,
		ActorID: "admin-1",
		Payload: events.AssignmentsResetPayload{ModifiedCount: 3},
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(msg.Payload, &got))
	assert.Equal(t, "assignments_reset", got["type"])
	assert.Equal(t, "admin-1", got["actor_id"])
	assert.EqualValues(t, 3, got["payload"].(map[string]any)["modified_count"])
}

func TestNotificationWorkerLogsPublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := persistence.NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(rdb.Close)
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, rdb, zap.New(core), config.NotificationConfig{RedisChannel: "moderation.events"})
	StartNotificationWorker(notifications)

	err := dispatcher.Publish(context.Background(), events.Event{ID: "evt-2", Type: events.EventUserDeleted, EntityID: "u1"})
	require.NoError(t, err, "the broker is not on the request path")

	notifications.Stop()
	failures := logs.FilterMessage("event publish failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "evt-2", failures[0].ContextMap()["event_id"])
}

func TestMetricsWorkerCountsEvents(t *testing.T) {
	metrics := observability.NewMetrics("pm")
	dispatcher := events.NewInMemoryDispatcher()
	StartMetricsWorker(dispatcher, metrics)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserDeleted}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserDeleted}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventPropertyReviewed}))

	expected := `
# HELP pm_moderation_actions_total Applied moderation actions by kind.
# TYPE pm_moderation_actions_total counter
pm_moderation_actions_total{action="property_reviewed"} 1
pm_moderation_actions_total{action="user_deleted"} 2
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "pm_moderation_actions_total"))
}
