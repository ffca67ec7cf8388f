package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/property-moderation/internal/domain"
)

func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestMemoryUsers_CreateUpdateVersioning(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	u := &domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleBuyer, Active: true}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)
	assert.Equal(t, int64(1), u.Version)

	dup := &domain.User{Name: "Ann 2", Email: "ANN@example.com", Role: domain.RoleSeller}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicateEmail)

	first, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	second, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)

	first.Name = "Ann A."
	require.NoError(t, users.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "Ann B."
	assert.ErrorIs(t, users.Update(ctx, second), ErrVersionConflict)

	stored, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann A.", stored.Name)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.Update(ctx, &domain.User{ID: "missing"}), ErrNotFound)
}

func TestMemoryUsers_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	u := &domain.User{Email: "c@example.com", Role: domain.RoleBuyer, Active: true}
	require.NoError(t, users.Create(ctx, u))
	u.Name = "mutated after create"

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Name)

	got.Suspension = &domain.Suspension{By: "x"}
	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, again.Suspension)
}

func TestMemoryUsers_FilterAndPage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().WithClock(tickingClock())
	users := store.Users()

	seed := []domain.User{
		{Name: "Bob", Email: "bob@example.com", Role: domain.RoleBuyer, Active: true},
		{Name: "Sue", Email: "sue@example.com", Role: domain.RoleSeller, Active: true},
		{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAgent, Active: true},
		{Name: "Del", Email: "del@example.com", Role: domain.RoleBuyer, Deletion: &domain.Deletion{}},
		{Name: "Sam", Email: "sam@example.com", Role: domain.RoleBuyer, Suspension: &domain.Suspension{}},
	}
	for i := range seed {
		require.NoError(t, users.Create(ctx, &seed[i]))
	}

	total, err := users.Count(ctx, UserFilter{Roles: []domain.Role{domain.RoleBuyer}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = users.Count(ctx, UserFilter{Roles: []domain.Role{domain.RoleBuyer}, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	suspended := true
	total, err = users.Count(ctx, UserFilter{Suspended: &suspended})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	page, err := users.List(ctx, UserFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Sam", page[0].Name, "newest first")
	assert.Equal(t, "Ada", page[1].Name)

	page, err = users.List(ctx, UserFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Empty(t, page)

	found, err := users.List(ctx, UserFilter{Search: "SUE@"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.RoleSeller, found[0].Role)
}

func TestMemoryProperties_ClearAssignments(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	for i := 0; i < 5; i++ {
		p := &domain.Property{Title: "Flat", Price: 100, Approval: domain.ApprovalPending}
		if i < 3 {
			p.Assignment = &domain.Assignment{AgentID: "agent-1"}
		}
		require.NoError(t, props.Create(ctx, p))
	}

	modified, err := props.ClearAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), modified)

	assigned := true
	left, err := props.Count(ctx, PropertyFilter{Assigned: &assigned})
	require.NoError(t, err)
	assert.Zero(t, left)

	modified, err = props.ClearAssignments(ctx)
	require.NoError(t, err)
	assert.Zero(t, modified)
}

func TestMemoryProperties_ReleaseAgent(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	for _, agent := range []string{"agent-1", "agent-1", "agent-2", ""} {
		p := &domain.Property{Title: "Flat", Price: 100, Approval: domain.ApprovalPending}
		if agent != "" {
			p.Assignment = &domain.Assignment{AgentID: agent}
		}
		require.NoError(t, props.Create(ctx, p))
	}

	released, err := props.ReleaseAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	held, err := props.Count(ctx, PropertyFilter{AgentID: ptrString("agent-1")})
	require.NoError(t, err)
	assert.Zero(t, held)
	kept, err := props.Count(ctx, PropertyFilter{AgentID: ptrString("agent-2")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), kept)
}

func TestMemoryProperties_Filters(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().WithClock(tickingClock()).Properties()

	seller := "seller-1"
	approved := domain.ApprovalApproved
	require.NoError(t, props.Create(ctx, &domain.Property{SellerID: seller, Title: "Harbor loft", City: "Lisbon", Approval: domain.ApprovalApproved}))
	require.NoError(t, props.Create(ctx, &domain.Property{SellerID: seller, Title: "Cottage", City: "Porto", Approval: domain.ApprovalPending}))
	require.NoError(t, props.Create(ctx, &domain.Property{SellerID: "other", Title: "Villa", Approval: domain.ApprovalApproved, Deletion: &domain.Deletion{}}))

	n, err := props.Count(ctx, PropertyFilter{Approval: &approved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mine, err := props.List(ctx, PropertyFilter{SellerID: &seller})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Cottage", mine[0].Title)

	hits, err := props.List(ctx, PropertyFilter{Search: "lisbon"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Harbor loft", hits[0].Title)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Users().Count(ctx, UserFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
