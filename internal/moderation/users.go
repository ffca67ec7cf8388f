// Package moderation holds the pure rules for admin moderation actions. Every
// function takes the current record and returns the next one without touching
// the input, so callers can persist the result or discard it.
package moderation

import (
	"time"

	"github.com/estatehub/property-moderation/internal/domain"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// UserTarget is a requested account status.
type UserTarget struct {
	Status domain.UserStatus
	Reason string
}

// EvaluateUserStatus applies an active/suspended request to user.
func EvaluateUserStatus(user *domain.User, target UserTarget, actorID string, now time.Time) (*domain.User, error) {
	if target.Status != domain.UserStatusActive && target.Status != domain.UserStatusSuspended {
		return nil, apperrors.NewValidationError("status must be 'active' or 'suspended'", map[string]any{"status": target.Status})
	}
	if err := guardModeratable(user, "Admin accounts cannot be suspended or modified"); err != nil {
		return nil, err
	}

	next := user.Clone()
	if target.Status == domain.UserStatusSuspended {
		suspend(next, actorID, target.Reason, now)
	} else {
		activate(next)
	}
	return next, nil
}

// ToggleUserSuspension suspends an active user and reactivates anyone else.
func ToggleUserSuspension(user *domain.User, actorID string, now time.Time) (*domain.User, error) {
	if err := guardModeratable(user, "Admin accounts cannot be suspended or modified"); err != nil {
		return nil, err
	}

	next := user.Clone()
	if next.Status() == domain.UserStatusActive {
		suspend(next, actorID, "", now)
	} else {
		activate(next)
	}
	return next, nil
}

// EvaluateUserDeletion soft-deletes user on behalf of actorID.
func EvaluateUserDeletion(user *domain.User, actorID string, now time.Time) (*domain.User, error) {
	if err := guardModeratable(user, "Admin accounts cannot be deleted"); err != nil {
		return nil, err
	}

	next := user.Clone()
	next.Deletion = &domain.Deletion{At: now, By: actorID}
	return next, nil
}

func guardModeratable(user *domain.User, adminMessage string) error {
	if user == nil || user.IsDeleted() {
		return apperrors.NewNotFound("user", nil)
	}
	if user.Role == domain.RoleAdmin {
		return apperrors.NewForbidden(adminMessage)
	}
	return nil
}

// suspend keeps the original timestamp and actor when the user is already
// suspended.
func suspend(u *domain.User, actorID, reason string, now time.Time) {
	u.Active = false
	if u.Suspension != nil {
		if reason != "" {
			u.Suspension.Reason = reason
		}
		return
	}
	u.Suspension = &domain.Suspension{At: now, By: actorID, Reason: reason}
}

func activate(u *domain.User) {
	u.Active = true
	u.Suspension = nil
}
