package auth

import (
	"context"

	"github.com/spec-kit/hardware-store/internal/domain"
)

type securityContextKey struct{}

// SecurityContext is the request-scoped record of who is calling and which
// roles they held when their token was validated. It is never mutated.
type SecurityContext struct {
	identity string
	roles    []domain.RoleName
}

// NewSecurityContext copies roles so later changes to the source slice are invisible.
func NewSecurityContext(identity string, roles []domain.RoleName) *SecurityContext {
	return &SecurityContext{
		identity: identity,
		roles:    append([]domain.RoleName(nil), roles...),
	}
}

// Identity returns the authenticated identity string.
func (s *SecurityContext) Identity() string {
	return s.identity
}

// Roles returns a copy of the granted roles.
func (s *SecurityContext) Roles() []domain.RoleName {
	return append([]domain.RoleName(nil), s.roles...)
}

// HasRole reports whether role was granted.
func (s *SecurityContext) HasRole(role domain.RoleName) bool {
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithSecurityContext attaches sc to ctx unless one is already present, in
// which case ctx is returned unchanged together with false.
func WithSecurityContext(ctx context.Context, sc *SecurityContext) (context.Context, bool) {
	if sc == nil {
		return ctx, false
	}
	if _, exists := SecurityContextFrom(ctx); exists {
		return ctx, false
	}
	return context.WithValue(ctx, securityContextKey{}, sc), true
}

// SecurityContextFrom retrieves the context established by the gate.
func SecurityContextFrom(ctx context.Context) (*SecurityContext, bool) {
	if ctx == nil {
		return nil, false
	}
	sc, ok := ctx.Value(securityContextKey{}).(*SecurityContext)
	return sc, ok && sc != nil
}
