package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
	"github.com/estatehub/property-moderation/pkg/util/pagination"
)

// DirectoryService serves the admin listings and seller submissions.
type DirectoryService struct {
	users      repository.UserRepository
	properties repository.PropertyRepository
	logger     *zap.Logger
	pageCfg    config.PaginationConfig
}

// DirectoryDependencies bundles repositories.
type DirectoryDependencies struct {
	UserRepo     repository.UserRepository
	PropertyRepo repository.PropertyRepository
	Logger       *zap.Logger
	Pagination   config.PaginationConfig
}

// UserQuery describes admin user listing filters.
type UserQuery struct {
	Role           string
	Search         string
	IncludeDeleted bool
	Page           int
	Limit          int
}

// PropertyQuery describes admin listing filters.
type PropertyQuery struct {
	Approval string
	SellerID string
	AgentID  string
	Search   string
	Page     int
	Limit    int
}

// PropertyInput is a seller's new listing.
type PropertyInput struct {
	Title       string
	Description string
	Price       float64
	City        string
	Address     string
	ListingType string
}

// NewDirectoryService creates the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		users:      deps.UserRepo,
		properties: deps.PropertyRepo,
		logger:     loggerOrNop(deps.Logger),
		pageCfg:    deps.Pagination,
	}
}

func (s *DirectoryService) params(page, limit int) pagination.Params {
	return pagination.NewParams(page, limit, s.pageCfg.DefaultLimit, s.pageCfg.MaxLimit)
}

// ListUsers returns one page of accounts, newest first.
func (s *DirectoryService) ListUsers(ctx context.Context, q UserQuery) ([]domain.User, pagination.Meta, error) {
	filter := repository.UserFilter{
		Search:         strings.TrimSpace(q.Search),
		IncludeDeleted: q.IncludeDeleted,
	}
	if role := strings.TrimSpace(strings.ToLower(q.Role)); role != "" {
		if !domain.Role(role).Valid() {
			return nil, pagination.Meta{}, apperrors.NewValidationError("Invalid role filter", map[string]any{"role": q.Role})
		}
		filter.Roles = []domain.Role{domain.Role(role)}
	}
	return s.pageUsers(ctx, filter, s.params(q.Page, q.Limit))
}

// ListAgents returns one page of agent accounts.
func (s *DirectoryService) ListAgents(ctx context.Context, q UserQuery) ([]domain.User, pagination.Meta, error) {
	q.Role = string(domain.RoleAgent)
	return s.ListUsers(ctx, q)
}

// TermsLogs lists accounts that accepted the terms, latest acceptance first.
// Deleted accounts stay in the log.
func (s *DirectoryService) TermsLogs(ctx context.Context, page, limit int) ([]domain.User, pagination.Meta, error) {
	filter := repository.UserFilter{TermsAccepted: true, IncludeDeleted: true}
	return s.pageUsers(ctx, filter, s.params(page, limit))
}

func (s *DirectoryService) pageUsers(ctx context.Context, filter repository.UserFilter, params pagination.Params) ([]domain.User, pagination.Meta, error) {
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	filter.Limit = params.Limit
	filter.Offset = params.Offset()
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.MapError(err)
	}
	return users, pagination.NewMeta(params, total), nil
}

// ListProperties returns one page of live listings.
func (s *DirectoryService) ListProperties(ctx context.Context, q PropertyQuery) ([]domain.Property, pagination.Meta, error) {
	filter := repository.PropertyFilter{Search: strings.TrimSpace(q.Search)}
	if approval := strings.TrimSpace(strings.ToLower(q.Approval)); approval != "" {
		status := domain.ApprovalStatus(approval)
		if !status.Valid() {
			return nil, pagination.Meta{}, apperrors.NewValidationError("Invalid approval status filter", map[string]any{"status": q.Approval})
		}
		filter.Approval = &status
	}
	if q.SellerID != "" {
		if !validID(q.SellerID) {
			return nil, pagination.Meta{}, apperrors.NewValidationError("Invalid sellerId filter", map[string]any{"sellerId": q.SellerID})
		}
		filter.SellerID = &q.SellerID
	}
	if q.AgentID != "" {
		if !validID(q.AgentID) {
			return nil, pagination.Meta{}, apperrors.NewValidationError("Invalid agentId filter", map[string]any{"agentId": q.AgentID})
		}
		filter.AgentID = &q.AgentID
	}

	params := s.params(q.Page, q.Limit)
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
	return properties, pagination.NewMeta(params, total), nil
}

// SubmitProperty creates a pending listing owned by seller.
func (s *DirectoryService) SubmitProperty(ctx context.Context, seller *domain.User, input PropertyInput) (*domain.Property, error) {
	if seller == nil || seller.Role != domain.RoleSeller {
		return nil, apperrors.NewForbidden("Only sellers can submit properties")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Title is required", nil)
	}
	if input.Price <= 0 {
		return nil, apperrors.NewValidationError("Price must be greater than zero", map[string]any{"price": input.Price})
	}
	listingType := domain.ListingSale
	switch strings.ToLower(strings.TrimSpace(input.ListingType)) {
	case "", string(domain.ListingSale):
	case string(domain.ListingRent):
		listingType = domain.ListingRent
	default:
		return nil, apperrors.NewValidationError("listingType must be 'sale' or 'rent'", map[string]any{"listingType": input.ListingType})
	}

	property := &domain.Property{
		SellerID:    seller.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		City:        strings.TrimSpace(input.City),
		Address:     strings.TrimSpace(input.Address),
		ListingType: listingType,
		Approval:    domain.ApprovalPending,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("property submitted", zap.String("seller_id", seller.ID), zap.String("property_id", property.ID))
	return property, nil
}
