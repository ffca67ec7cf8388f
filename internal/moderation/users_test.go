package moderation

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/property-moderation/internal/domain"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func buyer() *domain.User {
	return &domain.User{ID: "u1", Name: "Bea", Email: "bea@example.com", Role: domain.RoleBuyer, Active: true}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, status, de.HTTPStatus, de.Message)
}

func TestEvaluateUserStatus_Suspend(t *testing.T) {
	user := buyer()

	next, err := EvaluateUserStatus(user, UserTarget{Status: domain.UserStatusSuspended, Reason: "spam"}, "admin-1", now)
	require.NoError(t, err)

	assert.False(t, next.Active)
	require.NotNil(t, next.Suspension)
	assert.Equal(t, now, next.Suspension.At)
	assert.Equal(t, "admin-1", next.Suspension.By)
	assert.Equal(t, "spam", next.Suspension.Reason)
	assert.Equal(t, domain.UserStatusSuspended, next.Status())

	assert.True(t, user.Active, "input must not be mutated")
	assert.Nil(t, user.Suspension)
}

func TestEvaluateUserStatus_RoundTripClearsSuspension(t *testing.T) {
	suspended, err := EvaluateUserStatus(buyer(), UserTarget{Status: domain.UserStatusSuspended, Reason: "fraud"}, "admin-1", now)
	require.NoError(t, err)

	active, err := EvaluateUserStatus(suspended, UserTarget{Status: domain.UserStatusActive}, "admin-1", now.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, active.Active)
	assert.False(t, active.IsSuspended())
	assert.Nil(t, active.Suspension)
	assert.Equal(t, domain.UserStatusActive, active.Status())
}

func TestEvaluateUserStatus_Idempotent(t *testing.T) {
	first, err := EvaluateUserStatus(buyer(), UserTarget{Status: domain.UserStatusSuspended}, "admin-1", now)
	require.NoError(t, err)

	second, err := EvaluateUserStatus(first, UserTarget{Status: domain.UserStatusSuspended}, "admin-2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, err := EvaluateUserStatus(buyer(), UserTarget{Status: domain.UserStatusActive}, "admin-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, again.Status())
}

func TestEvaluateUserStatus_Rejections(t *testing.T) {
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin, Active: true}
	deleted := buyer()
	deleted.Deletion = &domain.Deletion{At: now, By: "a1"}

	_, err := EvaluateUserStatus(admin, UserTarget{Status: domain.UserStatusSuspended}, "a2", now)
	requireStatus(t, err, http.StatusForbidden)
	assert.True(t, admin.Active)
	assert.Nil(t, admin.Suspension)

	_, err = EvaluateUserStatus(nil, UserTarget{Status: domain.UserStatusActive}, "a2", now)
	requireStatus(t, err, http.StatusNotFound)

	_, err = EvaluateUserStatus(deleted, UserTarget{Status: domain.UserStatusActive}, "a2", now)
	requireStatus(t, err, http.StatusNotFound)

	_, err = EvaluateUserStatus(buyer(), UserTarget{Status: "banned"}, "a2", now)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestToggleUserSuspension(t *testing.T) {
	suspended, err := ToggleUserSuspension(buyer(), "admin-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, suspended.Status())

	active, err := ToggleUserSuspension(suspended, "admin-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, active.Status())

	inactive := buyer()
	inactive.Active = false
	reactivated, err := ToggleUserSuspension(inactive, "admin-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, reactivated.Status())

	_, err = ToggleUserSuspension(&domain.User{ID: "a1", Role: domain.RoleAdmin, Active: true}, "admin-1", now)
	requireStatus(t, err, http.StatusForbidden)
}

func TestEvaluateUserDeletion(t *testing.T) {
	user := buyer()
	next, err := EvaluateUserDeletion(user, "admin-1", now)
	require.NoError(t, err)
	require.NotNil(t, next.Deletion)
	assert.Equal(t, "admin-1", next.Deletion.By)
	assert.Equal(t, now, next.Deletion.At)
	assert.Equal(t, domain.UserStatusDeleted, next.Status())
	assert.False(t, user.IsDeleted())

	_, err = EvaluateUserDeletion(next, "admin-1", now)
	requireStatus(t, err, http.StatusNotFound)

	_, err = EvaluateUserDeletion(&domain.User{ID: "a1", Role: domain.RoleAdmin}, "admin-1", now)
	requireStatus(t, err, http.StatusForbidden)
}
