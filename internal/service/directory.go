package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/domain"
	"github.com/spec-kit/hardware-store/internal/repository"
)

// Directory resolves token subjects against the users table. Results are
// read fresh on every call so that disabling a user or changing roles takes
// effect on the next request.
type Directory struct {
	users repository.UserRepository
}

// NewDirectory builds the identity lookup used by the authentication gate.
func NewDirectory(users repository.UserRepository) *Directory {
	return &Directory{users: users}
}

// Resolve implements auth.IdentityLookup.
func (d *Directory) Resolve(ctx context.Context, identity string) (*domain.IdentityRecord, error) {
	if identity == "" {
		return nil, auth.ErrIdentityNotFound
	}
	user, err := d.users.GetByEmail(ctx, identity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user.IdentityRecord(), nil
}
