package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hardware-store/internal/domain"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

func TestAuthorize(t *testing.T) {
	normal := NewSecurityContext("a@x.com", []domain.RoleName{domain.RoleNormal})
	admin := NewSecurityContext("root@x.com", []domain.RoleName{domain.RoleNormal, domain.RoleAdmin})

	tests := []struct {
		name     string
		sc       *SecurityContext
		required []domain.RoleName
		want     Decision
	}{
		{"absent context", nil, []domain.RoleName{domain.RoleNormal}, Decision{Reason: ReasonUnauthenticated}},
		{"absent context no roles", nil, nil, Decision{Reason: ReasonUnauthenticated}},
		{"normal asks admin", normal, []domain.RoleName{domain.RoleAdmin}, Decision{Reason: ReasonForbidden}},
		{"normal asks normal", normal, []domain.RoleName{domain.RoleNormal}, Decision{Allowed: true}},
		{"any of", normal, []domain.RoleName{domain.RoleAdmin, domain.RoleNormal}, Decision{Allowed: true}},
		{"admin asks admin", admin, []domain.RoleName{domain.RoleAdmin}, Decision{Allowed: true}},
		{"no required roles", normal, nil, Decision{Reason: ReasonForbidden}},
		{"no required roles for admin", admin, nil, Decision{Reason: ReasonForbidden}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.sc, tt.required...))
		})
	}
}

func TestAuthenticated(t *testing.T) {
	assert.Equal(t, Decision{Reason: ReasonUnauthenticated}, Authenticated(nil))
	assert.Equal(t, Decision{Allowed: true}, Authenticated(NewSecurityContext("a@x.com", nil)))
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true}.Err())

	unauth := apperrors.ToDomainError(Decision{Reason: ReasonUnauthenticated}.Err())
	assert.Equal(t, http.StatusUnauthorized, unauth.HTTPStatus)

	forbidden := apperrors.ToDomainError(Decision{Reason: ReasonForbidden}.Err())
	assert.Equal(t, http.StatusForbidden, forbidden.HTTPStatus)
}

func TestSecurityContextIsImmutable(t *testing.T) {
	roles := []domain.RoleName{domain.RoleNormal}
	sc := NewSecurityContext("a@x.com", roles)
	roles[0] = domain.RoleAdmin

	assert.False(t, sc.HasRole(domain.RoleAdmin))

	got := sc.Roles()
	got[0] = domain.RoleAdmin
	assert.Equal(t, []domain.RoleName{domain.RoleNormal}, sc.Roles())
}

func TestWithSecurityContextNeverOverwrites(t *testing.T) {
	first := NewSecurityContext("first@x.com", nil)
	ctx, ok := WithSecurityContext(context.Background(), first)
	require.True(t, ok)

	ctx, ok = WithSecurityContext(ctx, NewSecurityContext("second@x.com", nil))
	assert.False(t, ok)

	sc, exists := SecurityContextFrom(ctx)
	require.True(t, exists)
	assert.Equal(t, "first@x.com", sc.Identity())
}

func TestRequireRoles(t *testing.T) {
	newApp := func(sc *SecurityContext) *fiber.App {
		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				de := apperrors.ToDomainError(err)
				return c.SendStatus(de.HTTPStatus)
			},
		})
		app.Use(func(c *fiber.Ctx) error {
			if sc != nil {
				ctx, _ := WithSecurityContext(c.UserContext(), sc)
				c.SetUserContext(ctx)
			}
			return c.Next()
		})
		app.Get("/admin", RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})
		app.Get("/me", RequireAuthenticated(), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})
		app.Get("/nobody", RequireRoles(), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})
		return app
	}

	do := func(app *fiber.App, path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	anon := newApp(nil)
	assert.Equal(t, http.StatusUnauthorized, do(anon, "/admin"))
	assert.Equal(t, http.StatusUnauthorized, do(anon, "/me"))

	normal := newApp(NewSecurityContext("a@x.com", []domain.RoleName{domain.RoleNormal}))
	assert.Equal(t, http.StatusForbidden, do(normal, "/admin"))
	assert.Equal(t, http.StatusOK, do(normal, "/me"))

	roleless := newApp(NewSecurityContext("b@x.com", nil))
	assert.Equal(t, http.StatusOK, do(roleless, "/me"))
	assert.Equal(t, http.StatusForbidden, do(roleless, "/admin"))

	admin := newApp(NewSecurityContext("r@x.com", []domain.RoleName{domain.RoleAdmin}))
	assert.Equal(t, http.StatusOK, do(admin, "/admin"))
	assert.Equal(t, http.StatusForbidden, do(admin, "/nobody"))
}
