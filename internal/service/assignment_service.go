package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/moderation"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
	"github.com/estatehub/property-moderation/pkg/util/pagination"
)

// AssignmentService handles agent assignment operations.
type AssignmentService struct {
	properties repository.PropertyRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
	pageCfg    config.PaginationConfig
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	PropertyRepo repository.PropertyRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        Clock
	Pagination   config.PaginationConfig
}

// AgentSummary is the agent card shown on a seller's listing.
type AgentSummary struct {
	ID         string
	Name       string
	Email      string
	AssignedAt time.Time
}

// SellerListing pairs a listing with its assigned agent, if any.
type SellerListing struct {
	Property domain.Property
	Agent    *AgentSummary
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		properties: deps.PropertyRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrNow(deps.Clock),
		pageCfg:    deps.Pagination,
	}
}

// AssignAgent puts agentID in charge of the listing. The agent must be a live,
// active account with the agent role.
func (s *AssignmentService) AssignAgent(ctx context.Context, actorID, propertyID, agentID string) (*domain.Property, error) {
	if agentID == "" {
		return nil, apperrors.NewValidationError("agentId is required", nil)
	}
	property, err := loadProperty(ctx, s.properties, propertyID)
	if err != nil {
		return nil, err
	}
	agent, err := loadUser(ctx, s.users, agentID, "agent")
	if err != nil {
		return nil, err
	}
	previous := property.AssignedAgentID()
	next, err := moderation.EvaluateAssignment(property, agent, actorID, s.now())
	if err != nil {
		return nil, err
	}
	if previous == agentID {
		return next, nil
	}
	if err := s.properties.Update(ctx, next); err != nil {
		return nil, mapWriteError(err, "property")
	}

	s.logger.Info("agent assigned",
		zap.String("actor_id", actorID),
		zap.String("property_id", propertyID),
		zap.String("agent_id", agentID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventAgentAssigned,
		EntityID:  propertyID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   events.AgentAssignmentPayload{AgentID: agentID, PreviousAgentID: previous},
	})
	return next, nil
}

// UnassignAgent removes the agent from a listing. Unassigned listings are
// returned unchanged.
func (s *AssignmentService) UnassignAgent(ctx context.Context, actorID, propertyID string) (*domain.Property, error) {
	property, err := loadProperty(ctx, s.properties, propertyID)
	if err != nil {
		return nil, err
	}
	previous := property.AssignedAgentID()
	next, changed, err := moderation.EvaluateUnassignment(property)
	if err != nil {
		return nil, err
	}
	if !changed {
		return next, nil
	}
	if err := s.properties.Update(ctx, next); err != nil {
		return nil, mapWriteError(err, "property")
	}

	s.logger.Info("agent unassigned",
		zap.String("actor_id", actorID),
		zap.String("property_id", propertyID),
		zap.String("agent_id", previous))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventAgentUnassigned,
		EntityID:  propertyID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   events.AgentAssignmentPayload{AgentID: previous},
	})
	return next, nil
}

// ResetAssignments clears every agent assignment and returns how many
// listings changed.
func (s *AssignmentService) ResetAssignments(ctx context.Context, actorID string) (int64, error) {
	modified, err := s.properties.ClearAssignments(ctx)
	if err != nil {
		return 0, apperrors.NewServerError(err, "Failed to reset assignments")
	}

	s.logger.Info("assignments reset", zap.String("actor_id", actorID), zap.Int64("modified_count", modified))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventAssignmentsReset,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   events.AssignmentsResetPayload{ModifiedCount: modified},
	})
	return modified, nil
}

// SellerProperties lists a seller's own listings, newest first, with agent
// details attached.
func (s *AssignmentService) SellerProperties(ctx context.Context, sellerID string, page, limit int) ([]SellerListing, pagination.Meta, error) {
	params := pagination.NewParams(page, limit, s.pageCfg.DefaultLimit, s.pageCfg.MaxLimit)
	filter := repository.PropertyFilter{SellerID: &sellerID}

	total, err := s.properties.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	filter.Limit = params.Limit
	filter.Offset = params.Offset()
	properties, err := s.properties.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}

	agents := make(map[string]*domain.User)
	listings := make([]SellerListing, 0, len(properties))
	for _, p := range properties {
		listing := SellerListing{Property: p}
		if p.Assignment != nil {
			agent, err := s.agent(ctx, agents, p.Assignment.AgentID)
			if err != nil {
				return nil, pagination.Meta{}, err
			}
			if agent != nil {
				listing.Agent = &AgentSummary{
					ID:         agent.ID,
					Name:       agent.Name,
					Email:      agent.Email,
					AssignedAt: p.Assignment.AssignedAt,
				}
			}
		}
		listings = append(listings, listing)
	}
	return listings, pagination.NewMeta(params, total), nil
}

// agent returns nil for agents that no longer exist or were deleted.
func (s *AssignmentService) agent(ctx context.Context, cache map[string]*domain.User, id string) (*domain.User, error) {
	if agent, ok := cache[id]; ok {
		return agent, nil
	}
	if !validID(id) {
		cache[id] = nil
		return nil, nil
	}
	agent, err := s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		agent = nil
	case err != nil:
		return nil, apperrors.MapError(err)
	case agent.IsDeleted():
		agent = nil
	}
	cache[id] = agent
	return agent, nil
}
