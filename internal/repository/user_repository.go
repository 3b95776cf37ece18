package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hardware-store/internal/domain"
)

// UserRepository defines persistence access for store users and their roles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page PageRequest) ([]domain.User, int64, error)
	SearchByName(ctx context.Context, keyword string) ([]domain.User, error)
	AddRole(ctx context.Context, userID, roleID string) error
}

// PageRequest selects one page of a sorted listing.
type PageRequest struct {
	Number  int
	Size    int
	SortBy  string
	SortDir string
}

var userSortColumns = map[string]string{
	"name":      "u.name",
	"email":     "u.email",
	"createdAt": "u.created_at",
	"userId":    "u.id",
}

// Normalize clamps the request to usable values.
func (p PageRequest) Normalize() PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if _, ok := userSortColumns[p.SortBy]; !ok {
		p.SortBy = "name"
	}
	if strings.EqualFold(p.SortDir, "desc") {
		p.SortDir = "desc"
	} else {
		p.SortDir = "asc"
	}
	return p
}

// Offset is the row offset of the page.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

const selectUser = `
        SELECT u.id, u.name, u.email, u.password_hash, u.about, u.gender, u.image_name, u.enabled,
               u.created_at, u.updated_at,
               COALESCE(ARRAY_AGG(r.id) FILTER (WHERE r.id IS NOT NULL), '{}') AS role_ids,
               COALESCE(ARRAY_AGG(r.name) FILTER (WHERE r.id IS NOT NULL), '{}') AS role_names
        FROM users u
        LEFT JOIN user_roles ur ON ur.user_id = u.id
        LEFT JOIN roles r ON r.id = ur.role_id`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, password_hash, about, gender, image_name, enabled)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.About,
			user.Gender,
			user.ImageName,
			user.Enabled,
		).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}
		for _, role := range user.Roles {
			if err := insertUserRole(ctx, tx, user.ID, role.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, password_hash=$2, about=$3, gender=$4, image_name=$5, enabled=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.PasswordHash,
		user.About,
		user.Gender,
		user.ImageName,
		user.Enabled,
		user.ID,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.id=$1 GROUP BY u.id`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.email=$1 GROUP BY u.id`, email))
}

func (r *userRepository) List(ctx context.Context, page PageRequest) ([]domain.User, int64, error) {
	page = page.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectUser + fmt.Sprintf(" GROUP BY u.id ORDER BY %s %s LIMIT %d OFFSET %d",
		userSortColumns[page.SortBy], page.SortDir, page.Size, page.Offset())

	users, err := r.queryUsers(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) SearchByName(ctx context.Context, keyword string) ([]domain.User, error) {
	query := selectUser + ` WHERE LOWER(u.name) LIKE '%' || LOWER($1) || '%' ESCAPE '\' GROUP BY u.id ORDER BY u.name`
	return r.queryUsers(ctx, query, escapeLike(keyword))
}

func (r *userRepository) AddRole(ctx context.Context, userID, roleID string) error {
	return insertUserRole(ctx, r.pool, userID, roleID)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertUserRole(ctx context.Context, db execer, userID, roleID string) error {
	_, err := db.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		roleIDs   []string
		roleNames []string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.About,
		&user.Gender,
		&user.ImageName,
		&user.Enabled,
		&user.CreatedAt,
		&user.UpdatedAt,
		&roleIDs,
		&roleNames,
	); err != nil {
		return nil, err
	}
	for i := range roleIDs {
		user.Roles = append(user.Roles, domain.Role{ID: roleIDs[i], Name: domain.RoleName(roleNames[i])})
	}
	return &user, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
