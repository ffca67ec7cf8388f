package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// StatsService computes dashboard counts. Nothing is cached; every call
// queries the store.
type StatsService struct {
	users      repository.UserRepository
	properties repository.PropertyRepository
	logger     *zap.Logger
}

// StatsDependencies bundles repositories.
type StatsDependencies struct {
	UserRepo     repository.UserRepository
	PropertyRepo repository.PropertyRepository
	Logger       *zap.Logger
}

// NewStatsService creates the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	return &StatsService{
		users:      deps.UserRepo,
		properties: deps.PropertyRepo,
		logger:     loggerOrNop(deps.Logger),
	}
}

var (
	marketRoles = []domain.Role{domain.RoleBuyer, domain.RoleSeller, domain.RoleAgent}
	clientRoles = []domain.Role{domain.RoleBuyer, domain.RoleSeller}
)

// DashboardStats returns live listing, agent and non-admin user totals.
func (s *StatsService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := s.countAll(ctx, "dashboard",
		s.countProperties(repository.PropertyFilter{}, &stats.TotalProperties),
		s.countUsers(repository.UserFilter{Roles: []domain.Role{domain.RoleAgent}}, &stats.TotalAgents),
		s.countUsers(repository.UserFilter{Roles: marketRoles}, &stats.TotalUsers),
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UserStats counts live buyers and sellers.
func (s *StatsService) UserStats(ctx context.Context) (*domain.UserStats, error) {
	var stats domain.UserStats
	err := s.countAll(ctx, "users",
		s.countUsers(repository.UserFilter{Roles: clientRoles}, &stats.TotalUsers),
		s.countUsers(repository.UserFilter{Roles: []domain.Role{domain.RoleBuyer}}, &stats.Buyers),
		s.countUsers(repository.UserFilter{Roles: []domain.Role{domain.RoleSeller}}, &stats.Sellers),
		s.countUsers(repository.UserFilter{Roles: clientRoles, Suspended: ptrBool(true)}, &stats.Suspended),
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// PropertyStats counts live listings by approval state and assignment.
func (s *StatsService) PropertyStats(ctx context.Context) (*domain.PropertyStats, error) {
	var stats domain.PropertyStats
	pending, approved, rejected := domain.ApprovalPending, domain.ApprovalApproved, domain.ApprovalRejected
	err := s.countAll(ctx, "properties",
		s.countProperties(repository.PropertyFilter{}, &stats.Total),
		s.countProperties(repository.PropertyFilter{Approval: &pending}, &stats.Pending),
		s.countProperties(repository.PropertyFilter{Approval: &approved}, &stats.Approved),
		s.countProperties(repository.PropertyFilter{Approval: &rejected}, &stats.Rejected),
		s.countProperties(repository.PropertyFilter{Assigned: ptrBool(true)}, &stats.Assigned),
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

type counter func(context.Context) error

// countAll runs counters in order and stops at the first failure.
func (s *StatsService) countAll(ctx context.Context, name string, counters ...counter) error {
	for _, count := range counters {
		if err := count(ctx); err != nil {
			s.logger.Error("stats query failed", zap.String("stats", name), zap.Error(err))
			return apperrors.NewServerError(err, "Failed to load "+name+" stats")
		}
	}
	return nil
}

func (s *StatsService) countUsers(filter repository.UserFilter, dst *int64) counter {
	return func(ctx context.Context) (err error) {
		*dst, err = s.users.Count(ctx, filter)
		return err
	}
}

func (s *StatsService) countProperties(filter repository.PropertyFilter, dst *int64) counter {
	return func(ctx context.Context) (err error) {
		*dst, err = s.properties.Count(ctx, filter)
		return err
	}
}
