package events

import (
	"time"

	"github.com/estatehub/property-moderation/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserStatusChanged EventType = "user_status_changed"
	EventUserDeleted       EventType = "user_deleted"
	EventPropertyReviewed  EventType = "property_reviewed"
	EventPropertyDeleted   EventType = "property_deleted"
	EventAgentAssigned     EventType = "agent_assigned"
	EventAgentUnassigned   EventType = "agent_unassigned"
	EventAssignmentsReset  EventType = "assignments_reset"
)

// AllEventTypes lists every type a moderation subscriber may want.
func AllEventTypes() []EventType {
	return []EventType{
		EventUserStatusChanged,
		EventUserDeleted,
		EventPropertyReviewed,
		EventPropertyDeleted,
		EventAgentAssigned,
		EventAgentUnassigned,
		EventAssignmentsReset,
	}
}

// Event represents a domain event emitted by services after a write commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	OldStatus domain.UserStatus `json:"old_status"`
	NewStatus domain.UserStatus `json:"new_status"`
	Reason    string            `json:"reason,omitempty"`
}

// PropertyReviewedPayload payload.
type PropertyReviewedPayload struct {
	SellerID  string                `json:"seller_id"`
	OldStatus domain.ApprovalStatus `json:"old_status"`
	NewStatus domain.ApprovalStatus `json:"new_status"`
	Reason    string                `json:"reason,omitempty"`
}

// AgentAssignmentPayload carries the agent for assign and unassign events.
type AgentAssignmentPayload struct {
	AgentID         string `json:"agent_id"`
	PreviousAgentID string `json:"previous_agent_id,omitempty"`
}

// AssignmentsResetPayload payload.
type AssignmentsResetPayload struct {
	ModifiedCount int64 `json:"modified_count"`
}
