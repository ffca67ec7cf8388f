package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// validID reports whether id can name a stored record. Ids are UUIDs, so
// anything else is looked up nowhere and reported as missing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func loadUser(ctx context.Context, users repository.UserRepository, id, resource string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound(resource, map[string]any{"user_id": id})
	}
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(resource, map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func loadProperty(ctx context.Context, properties repository.PropertyRepository, id string) (*domain.Property, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("property", map[string]any{"property_id": id})
	}
	property, err := properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// mapWriteError translates repository write failures.
func mapWriteError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("The "+resource+" was modified by another request, please retry", nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("Email already registered", nil)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	default:
		return apperrors.MapError(err)
	}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event subscriber failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func ptrBool(v bool) *bool {
	return &v
}
