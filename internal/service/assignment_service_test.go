package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/repository"
)

func TestAssignAgent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assignments()
	agent := f.user(t, domain.User{Name: "Ada", Role: domain.RoleAgent, Active: true})
	listing := f.property(t, domain.Property{SellerID: "seller-1"})

	assigned, err := svc.AssignAgent(ctx, "admin-1", listing.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.Assignment)
	assert.Equal(t, agent.ID, assigned.Assignment.AgentID)
	assert.Equal(t, "admin-1", assigned.Assignment.AssignedBy)
	assert.Equal(t, fixedNow, assigned.Assignment.AssignedAt)

	again, err := svc.AssignAgent(ctx, "admin-1", listing.ID, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, assigned.Version, again.Version, "reassigning the same agent writes nothing")

	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventAgentAssigned, f.published[0].Type)
}

func TestAssignAgent_ValidatesAgent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assignments()
	listing := f.property(t, domain.Property{})
	buyer := f.user(t, domain.User{Role: domain.RoleBuyer, Active: true})
	suspended := f.user(t, domain.User{Role: domain.RoleAgent, Suspension: &domain.Suspension{By: "admin-1"}})
	deleted := f.user(t, domain.User{Role: domain.RoleAgent, Active: true, Deletion: &domain.Deletion{By: "admin-1"}})

	cases := []struct {
		name    string
		agentID string
		status  int
	}{
		{name: "missing id", agentID: "", status: http.StatusBadRequest},
		{name: "malformed id", agentID: "nobody", status: http.StatusNotFound},
		{name: "unknown agent", agentID: uuid.NewString(), status: http.StatusNotFound},
		{name: "not an agent", agentID: buyer.ID, status: http.StatusBadRequest},
		{name: "suspended agent", agentID: suspended.ID, status: http.StatusConflict},
		{name: "deleted agent", agentID: deleted.ID, status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AssignAgent(ctx, "admin-1", listing.ID, tc.agentID)
			requireHTTPStatus(t, err, tc.status)
		})
	}

	stored, err := f.properties.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Assignment)
}

func TestUnassignAgent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assignments()
	listing := f.property(t, domain.Property{Assignment: &domain.Assignment{AgentID: "agent-1"}})

	next, err := svc.UnassignAgent(ctx, "admin-1", listing.ID)
	require.NoError(t, err)
	assert.Nil(t, next.Assignment)

	_, err = svc.UnassignAgent(ctx, "admin-1", listing.ID)
	require.NoError(t, err)

	require.Len(t, f.published, 1)
	assert.Equal(t, events.AgentAssignmentPayload{AgentID: "agent-1"}, f.published[0].Payload)
}

func TestResetAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assignments()
	for i := 0; i < 4; i++ {
		f.property(t, domain.Property{Assignment: &domain.Assignment{AgentID: "agent-1"}})
	}
	untouched := f.property(t, domain.Property{})

	modified, err := svc.ResetAssignments(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), modified)

	left, err := f.properties.Count(ctx, repository.PropertyFilter{Assigned: ptrBool(true)})
	require.NoError(t, err)
	assert.Zero(t, left)

	stored, err := f.properties.GetByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, untouched.Version, stored.Version)

	modified, err = svc.ResetAssignments(ctx, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, modified)
}

func TestSellerProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.assignments()
	agent := f.user(t, domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAgent, Active: true})
	f.property(t, domain.Property{SellerID: "seller-1", Title: "With agent", Assignment: &domain.Assignment{AgentID: agent.ID, AssignedAt: fixedNow}})
	f.property(t, domain.Property{SellerID: "seller-1", Title: "Gone agent", Assignment: &domain.Assignment{AgentID: "vanished"}})
	f.property(t, domain.Property{SellerID: "seller-2", Title: "Someone else"})

	listings, meta, err := svc.SellerProperties(ctx, "seller-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	require.Len(t, listings, 2)

	byTitle := map[string]SellerListing{}
	for _, l := range listings {
		byTitle[l.Property.Title] = l
	}
	require.NotNil(t, byTitle["With agent"].Agent)
	assert.Equal(t, AgentSummary{ID: agent.ID, Name: "Ada", Email: "ada@example.com", AssignedAt: fixedNow}, *byTitle["With agent"].Agent)
	assert.Nil(t, byTitle["Gone agent"].Agent)
}
