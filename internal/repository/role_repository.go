package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hardware-store/internal/domain"
)

// RoleRepository manages the role rows users are linked to.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	Ensure(ctx context.Context, role domain.Role) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	var role domain.Role
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id=$1`, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

// Ensure inserts the role when its id is not yet present.
func (r *roleRepository) Ensure(ctx context.Context, role domain.Role) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, role.ID, string(role.Name))
	return err
}
