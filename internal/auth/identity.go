package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/hardware-store/internal/domain"
)

// ErrIdentityNotFound is returned by an IdentityLookup when no record exists.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityLookup resolves a token subject to the current authoritative record.
// The gate calls Resolve at most once per request and never caches the result.
type IdentityLookup interface {
	Resolve(ctx context.Context, identity string) (*domain.IdentityRecord, error)
}
