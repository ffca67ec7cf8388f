package service

import (
	"context"
	"errors"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/events"
)

const (
	publishTimeout   = 2 * time.Second
	defaultQueueSize = 256
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotificationQueueFull is returned when an event is dropped because the
// publish queue has no room.
var ErrNotificationQueueFull = errors.New("notification queue full")

// ErrNotificationsStopped is returned for events handled after Stop.
var ErrNotificationsStopped = errors.New("notifications stopped")

// Publisher fans serialized events out to other processes.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// NotificationService handles emitting notifications for domain events.
// Events are queued by the dispatcher and published to the broker from a
// single background loop, so a slow broker never holds up a request.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	queue     chan events.Event
	mu        sync.RWMutex
	stopped   bool
	startOnce sync.Once
	done      chan struct{}
}

// NewNotificationService creates the service. A nil publisher only logs.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     loggerOrNop(logger),
		cfg:        cfg,
		queue:      make(chan events.Event, size),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handle)
}

// Start launches the publish loop. Calling it more than once is a no-op.
func (n *NotificationService) Start() {
	n.startOnce.Do(func() {
		n.done = make(chan struct{})
		go n.run()
	})
}

// Stop rejects new events, then waits for the queued ones to be published.
func (n *NotificationService) Stop() {
	n.mu.Lock()
	if !n.stopped {
		n.stopped = true
		close(n.queue)
	}
	n.mu.Unlock()
	if n.done != nil {
		<-n.done
	}
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	n.logger.Info("moderation event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	if n.publisher == nil || n.cfg.RedisChannel == "" {
		return nil
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return ErrNotificationsStopped
	}
	select {
	case n.queue <- event:
		return nil
	default:
		return ErrNotificationQueueFull
	}
}

func (n *NotificationService) run() {
	defer close(n.done)
	for event := range n.queue {
		if err := n.publish(event); err != nil {
			n.logger.Warn("event publish failed",
				zap.String("channel", n.cfg.RedisChannel),
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

func (n *NotificationService) publish(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	receivers, err := n.publisher.Publish(ctx, n.cfg.RedisChannel, payload)
	if err != nil {
		return err
	}
	n.logger.Debug("event published",
		zap.String("channel", n.cfg.RedisChannel),
		zap.String("event_type", string(event.Type)),
		zap.Int64("receivers", receivers))
	return nil
}
