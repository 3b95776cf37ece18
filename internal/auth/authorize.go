package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hardware-store/internal/domain"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

// DenyReason explains a negative Decision.
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonForbidden       DenyReason = "forbidden"
)

// Decision is the result of Authorize.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err converts a denial into the matching 401/403 error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonUnauthenticated {
		return apperrors.NewUnauthorized("authentication required")
	}
	return apperrors.NewForbidden("insufficient role")
}

// Authorize allows when sc holds at least one of required. An empty required
// set never intersects, so it always denies.
func Authorize(sc *SecurityContext, required ...domain.RoleName) Decision {
	if sc == nil {
		return Decision{Reason: ReasonUnauthenticated}
	}
	for _, role := range required {
		if sc.HasRole(role) {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: ReasonForbidden}
}

// RequireRoles guards a route with Authorize over the request's SecurityContext.
func RequireRoles(roles ...domain.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, _ := SecurityContextFrom(c.UserContext())
		if err := Authorize(sc, roles...).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}

// Authenticated allows any caller holding a SecurityContext, whatever its roles.
func Authenticated(sc *SecurityContext) Decision {
	if sc == nil {
		return Decision{Reason: ReasonUnauthenticated}
	}
	return Decision{Allowed: true}
}

// RequireAuthenticated ensures a SecurityContext exists.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, _ := SecurityContextFrom(c.UserContext())
		if err := Authenticated(sc).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}
