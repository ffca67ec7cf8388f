package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/moderation"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// ModerationService applies admin actions to users and listings. Each call
// re-reads the record, evaluates the transition and writes it back under the
// record's version.
type ModerationService struct {
	users      repository.UserRepository
	properties repository.PropertyRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// ModerationDependencies bundles repositories.
type ModerationDependencies struct {
	UserRepo     repository.UserRepository
	PropertyRepo repository.PropertyRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        Clock
}

// NewModerationService creates the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	return &ModerationService{
		users:      deps.UserRepo,
		properties: deps.PropertyRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrNow(deps.Clock),
	}
}

// UpdateUserStatus sets a user active or suspended.
func (s *ModerationService) UpdateUserStatus(ctx context.Context, actorID, userID string, target moderation.UserTarget) (*domain.User, error) {
	return s.transitionUser(ctx, actorID, userID, func(u *domain.User) (*domain.User, error) {
		return moderation.EvaluateUserStatus(u, target, actorID, s.now())
	}, target.Reason)
}

// ToggleSuspension flips an account between active and suspended.
func (s *ModerationService) ToggleSuspension(ctx context.Context, actorID, userID string) (*domain.User, error) {
	return s.transitionUser(ctx, actorID, userID, func(u *domain.User) (*domain.User, error) {
		return moderation.ToggleUserSuspension(u, actorID, s.now())
	}, "")
}

// Unsuspend reactivates a user.
func (s *ModerationService) Unsuspend(ctx context.Context, actorID, userID string) (*domain.User, error) {
	return s.UpdateUserStatus(ctx, actorID, userID, moderation.UserTarget{Status: domain.UserStatusActive})
}

func (s *ModerationService) transitionUser(ctx context.Context, actorID, userID string, evaluate func(*domain.User) (*domain.User, error), reason string) (*domain.User, error) {
	current, err := loadUser(ctx, s.users, userID, "user")
	if err != nil {
		return nil, err
	}
	next, err := evaluate(current)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, next); err != nil {
		return nil, mapWriteError(err, "user")
	}

	s.logger.Info("user status changed",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.String("old_status", string(current.Status())),
		zap.String("new_status", string(next.Status())))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserStatusChanged,
		EntityID:  userID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload: events.UserStatusChangedPayload{
			OldStatus: current.Status(),
			NewStatus: next.Status(),
			Reason:    reason,
		},
	})
	return next, nil
}

// DeleteUser soft-deletes a non-admin account.
func (s *ModerationService) DeleteUser(ctx context.Context, actorID, userID string) error {
	current, err := loadUser(ctx, s.users, userID, "user")
	if err != nil {
		return err
	}
	next, err := moderation.EvaluateUserDeletion(current, actorID, s.now())
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, next); err != nil {
		return mapWriteError(err, "user")
	}
	if next.Role == domain.RoleAgent {
		released, err := s.properties.ReleaseAgent(ctx, userID)
		if err != nil {
			return apperrors.NewServerError(err, "Failed to release the agent's listings")
		}
		s.logger.Info("agent listings released", zap.String("agent_id", userID), zap.Int64("released", released))
	}

	s.logger.Info("user deleted", zap.String("actor_id", actorID), zap.String("user_id", userID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserDeleted,
		EntityID:  userID,
		ActorID:   actorID,
		Timestamp: s.now(),
	})
	return nil
}

// ApproveProperty marks a listing approved.
func (s *ModerationService) ApproveProperty(ctx context.Context, actorID, propertyID string) (*domain.Property, error) {
	return s.reviewProperty(ctx, actorID, propertyID, domain.ApprovalApproved, "")
}

// RejectProperty marks a listing rejected with an optional reason.
func (s *ModerationService) RejectProperty(ctx context.Context, actorID, propertyID, reason string) (*domain.Property, error) {
	return s.reviewProperty(ctx, actorID, propertyID, domain.ApprovalRejected, reason)
}

func (s *ModerationService) reviewProperty(ctx context.Context, actorID, propertyID string, target domain.ApprovalStatus, reason string) (*domain.Property, error) {
	current, err := loadProperty(ctx, s.properties, propertyID)
	if err != nil {
		return nil, err
	}
	next, err := moderation.EvaluatePropertyReview(current, target, reason, actorID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.properties.Update(ctx, next); err != nil {
		return nil, mapWriteError(err, "property")
	}

	s.logger.Info("property reviewed",
		zap.String("actor_id", actorID),
		zap.String("property_id", propertyID),
		zap.String("approval", string(next.Approval)))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventPropertyReviewed,
		EntityID:  propertyID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload: events.PropertyReviewedPayload{
			SellerID:  next.SellerID,
			OldStatus: current.Approval,
			NewStatus: next.Approval,
			Reason:    reason,
		},
	})
	return next, nil
}

// DeleteProperty soft-deletes a listing and releases its agent.
func (s *ModerationService) DeleteProperty(ctx context.Context, actorID, propertyID string) error {
	current, err := loadProperty(ctx, s.properties, propertyID)
	if err != nil {
		return err
	}
	next, err := moderation.EvaluatePropertyDeletion(current, actorID, s.now())
	if err != nil {
		return err
	}
	if err := s.properties.Update(ctx, next); err != nil {
		return mapWriteError(err, "property")
	}

	s.logger.Info("property deleted", zap.String("actor_id", actorID), zap.String("property_id", propertyID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventPropertyDeleted,
		EntityID:  propertyID,
		ActorID:   actorID,
		Timestamp: s.now(),
	})
	return nil
}
