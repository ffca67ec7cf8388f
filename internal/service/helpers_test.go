package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var testPagination = config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100}

type fixture struct {
	store      *repository.MemoryStore
	users      repository.UserRepository
	properties repository.PropertyRepository
	dispatcher events.Dispatcher
	published  []events.Event
	seq        int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	f := &fixture{
		store:      store,
		users:      store.Users(),
		properties: store.Properties(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	events.SubscribeAll(f.dispatcher, func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	})
	return f
}

func (f *fixture) user(t *testing.T, u domain.User) *domain.User {
	t.Helper()
	if u.Email == "" {
		f.seq++
		u.Email = fmt.Sprintf("%s-%d@example.com", u.Role, f.seq)
	}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return &u
}

func (f *fixture) property(t *testing.T, p domain.Property) *domain.Property {
	t.Helper()
	if p.Title == "" {
		p.Title = "Listing"
	}
	if p.Price == 0 {
		p.Price = 250000
	}
	if p.Approval == "" {
		p.Approval = domain.ApprovalPending
	}
	require.NoError(t, f.properties.Create(context.Background(), &p))
	return &p
}

func (f *fixture) moderation() *ModerationService {
	return NewModerationService(ModerationDependencies{
		UserRepo:     f.users,
		PropertyRepo: f.properties,
		Dispatcher:   f.dispatcher,
		Clock:        fixedClock,
	})
}

func (f *fixture) assignments() *AssignmentService {
	return NewAssignmentService(AssignmentDependencies{
		PropertyRepo: f.properties,
		UserRepo:     f.users,
		Dispatcher:   f.dispatcher,
		Clock:        fixedClock,
		Pagination:   testPagination,
	})
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, status, de.HTTPStatus, de.Message)
}

var errInvalidUUID = errors.New("ERROR: invalid input syntax for type uuid (SQLSTATE 22P02)")

// uuidUsers and uuidProperties reject non-UUID keys the way the UUID
// columns in Postgres do.
type uuidUsers struct {
	repository.UserRepository
}

func (u uuidUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errInvalidUUID
	}
	return u.UserRepository.GetByID(ctx, id)
}

type uuidProperties struct {
	repository.PropertyRepository
}

func (p uuidProperties) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errInvalidUUID
	}
	return p.PropertyRepository.GetByID(ctx, id)
}

func (p uuidProperties) Count(ctx context.Context, filter repository.PropertyFilter) (int64, error) {
	for _, id := range []*string{filter.SellerID, filter.AgentID} {
		if id == nil {
			continue
		}
		if _, err := uuid.Parse(*id); err != nil {
			return 0, errInvalidUUID
		}
	}
	return p.PropertyRepository.Count(ctx, filter)
}
