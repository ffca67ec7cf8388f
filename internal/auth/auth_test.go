package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5*time.Minute)

	token, exp, err := tm.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = NewTokenManager("other", 5*time.Minute).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, _, err := tm.GenerateToken("user-1", domain.RoleBuyer)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}

func newProtectedApp(t *testing.T, users repository.UserRepository, tm *TokenManager, roles ...domain.Role) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if de := apperrors.ToDomainError(err); de != nil && de.Code != apperrors.CodeInternal {
				return c.Status(de.HTTPStatus).SendString(de.Message)
			}
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).SendString(fe.Message)
			}
			return c.SendStatus(http.StatusInternalServerError)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/me", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(p.ID())
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryStore().Users()
	tm := NewTokenManager("secret", 10*time.Minute)

	active := &domain.User{Email: "a@example.com", Role: domain.RoleBuyer, Active: true}
	suspended := &domain.User{Email: "s@example.com", Role: domain.RoleBuyer, Suspension: &domain.Suspension{By: "admin"}}
	deleted := &domain.User{Email: "d@example.com", Role: domain.RoleBuyer, Active: true, Deletion: &domain.Deletion{By: "admin"}}
	for _, u := range []*domain.User{active, suspended, deleted} {
		require.NoError(t, users.Create(ctx, u))
	}

	bearer := func(u *domain.User) string {
		token, _, err := tm.GenerateToken(u.ID, u.Role)
		require.NoError(t, err)
		return "Bearer " + token
	}

	cases := []struct {
		name   string
		header string
		roles  []domain.Role
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "active", header: bearer(active), want: http.StatusOK},
		{name: "suspended", header: bearer(suspended), want: http.StatusForbidden},
		{name: "deleted", header: bearer(deleted), want: http.StatusUnauthorized},
		{name: "wrong role", header: bearer(active), roles: []domain.Role{domain.RoleAdmin}, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProtectedApp(t, users, tm, tc.roles...)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
