package moderation

import (
	"time"

	"github.com/estatehub/property-moderation/internal/domain"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// EvaluatePropertyReview approves or rejects a listing. Repeating the current
// decision keeps the original reviewer and time.
func EvaluatePropertyReview(property *domain.Property, target domain.ApprovalStatus, reason, actorID string, now time.Time) (*domain.Property, error) {
	if target != domain.ApprovalApproved && target != domain.ApprovalRejected {
		return nil, apperrors.NewValidationError("approval must be 'approved' or 'rejected'", map[string]any{"approval": target})
	}
	if property == nil || property.IsDeleted() {
		return nil, apperrors.NewNotFound("property", nil)
	}

	next := property.Clone()
	if target == domain.ApprovalApproved {
		reason = ""
	}
	if next.Approval == target && next.Review != nil {
		if reason != "" {
			next.Review.Reason = reason
		}
		return next, nil
	}
	next.Approval = target
	next.Review = &domain.Review{At: now, By: actorID, Reason: reason}
	return next, nil
}

// EvaluatePropertyDeletion soft-deletes a listing and releases its agent.
func EvaluatePropertyDeletion(property *domain.Property, actorID string, now time.Time) (*domain.Property, error) {
	if property == nil || property.IsDeleted() {
		return nil, apperrors.NewNotFound("property", nil)
	}

	next := property.Clone()
	next.Deletion = &domain.Deletion{At: now, By: actorID}
	next.Assignment = nil
	return next, nil
}

// EvaluateAssignment assigns agent to property. The target must be a live,
// active account with the agent role.
func EvaluateAssignment(property *domain.Property, agent *domain.User, actorID string, now time.Time) (*domain.Property, error) {
	if property == nil || property.IsDeleted() {
		return nil, apperrors.NewNotFound("property", nil)
	}
	if agent == nil || agent.IsDeleted() {
		return nil, apperrors.NewNotFound("agent", nil)
	}
	if agent.Role != domain.RoleAgent {
		return nil, apperrors.NewValidationError("user is not an agent", map[string]any{"user_id": agent.ID, "role": agent.Role})
	}
	if agent.Status() != domain.UserStatusActive {
		return nil, apperrors.NewConflict("agent account is not active", map[string]any{"agent_id": agent.ID, "status": agent.Status()})
	}

	next := property.Clone()
	if next.AssignedAgentID() == agent.ID {
		return next, nil
	}
	next.Assignment = &domain.Assignment{AgentID: agent.ID, AssignedAt: now, AssignedBy: actorID}
	return next, nil
}

// EvaluateUnassignment clears the agent. changed is false when the property
// had no agent.
func EvaluateUnassignment(property *domain.Property) (next *domain.Property, changed bool, err error) {
	if property == nil || property.IsDeleted() {
		return nil, false, apperrors.NewNotFound("property", nil)
	}
	next = property.Clone()
	changed = next.Assignment != nil
	next.Assignment = nil
	return next, changed, nil
}
