package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/persistence"
)

// postgresPool connects to TEST_POSTGRES_DSN and applies the migrations.
// Tests using it are skipped when the variable is unset.
func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip: TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	return pool
}

func pgUser(t *testing.T, users UserRepository, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         "PG " + string(role),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func pgProperty(t *testing.T, props PropertyRepository, sellerID string) *domain.Property {
	t.Helper()
	p := &domain.Property{
		SellerID:    sellerID,
		Title:       "PG listing",
		Price:       1000,
		ListingType: domain.ListingSale,
		Approval:    domain.ApprovalPending,
	}
	require.NoError(t, props.Create(context.Background(), p))
	return p
}

func TestPostgresUsers_UpdateVersioning(t *testing.T) {
	pool := postgresPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	admin := pgUser(t, users, domain.RoleAdmin)
	buyer := pgUser(t, users, domain.RoleBuyer)
	assert.Equal(t, int64(1), buyer.Version)

	stale := *buyer
	buyer.Active = false
	buyer.Suspension = &domain.Suspension{At: time.Now().UTC(), By: admin.ID, Reason: "spam"}
	require.NoError(t, users.Update(ctx, buyer))
	assert.Equal(t, int64(2), buyer.Version)

	stale.Name = "Overwritten"
	assert.ErrorIs(t, users.Update(ctx, &stale), ErrVersionConflict)

	missing := *buyer
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, users.Update(ctx, &missing), ErrNotFound)

	stored, err := users.GetByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, stored.Status())
	assert.Equal(t, "PG buyer", stored.Name)

	_, err = users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresProperties_UpdateAndRelease(t *testing.T) {
	pool := postgresPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	props := NewPropertyRepository(pool)
	seller := pgUser(t, users, domain.RoleSeller)
	agent := pgUser(t, users, domain.RoleAgent)

	var held []*domain.Property
	for i := 0; i < 2; i++ {
		p := pgProperty(t, props, seller.ID)
		p.Assignment = &domain.Assignment{AgentID: agent.ID, AssignedAt: time.Now().UTC(), AssignedBy: seller.ID}
		require.NoError(t, props.Update(ctx, p))
		held = append(held, p)
	}
	untouched := pgProperty(t, props, seller.ID)

	stale := *held[0]
	stale.Version = 1
	assert.ErrorIs(t, props.Update(ctx, &stale), ErrVersionConflict)
	missing := *untouched
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, props.Update(ctx, &missing), ErrNotFound)

	n, err := props.Count(ctx, PropertyFilter{AgentID: &agent.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	released, err := props.ReleaseAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	for _, p := range held {
		stored, err := props.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Assignment)
		assert.Equal(t, p.Version+1, stored.Version)
	}
	stored, err := props.GetByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, untouched.Version, stored.Version)

	p := held[0]
	fresh, err := props.GetByID(ctx, p.ID)
	require.NoError(t, err)
	fresh.Assignment = &domain.Assignment{AgentID: agent.ID, AssignedAt: time.Now().UTC(), AssignedBy: seller.ID}
	require.NoError(t, props.Update(ctx, fresh))

	cleared, err := props.ClearAssignments(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cleared, int64(1))
	cleared, err = props.ClearAssignments(ctx)
	require.NoError(t, err)
	assert.Zero(t, cleared)
}
