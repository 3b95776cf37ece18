package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/cache"
	"github.com/spec-kit/hardware-store/internal/config"
	"github.com/spec-kit/hardware-store/internal/domain"
	"github.com/spec-kit/hardware-store/internal/events"
	"github.com/spec-kit/hardware-store/internal/repository"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

// UserService manages store accounts.
type UserService struct {
	users        repository.UserRepository
	roles        repository.RoleRepository
	cache        cache.UserCache
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	bcryptCost   int
	adminRoleID  string
	normalRoleID string
}

// UserDependencies bundles collaborators for the user service. Cache and
// Dispatcher are optional.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	RoleRepo   repository.RoleRepository
	Cache      cache.UserCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	About     string
	Gender    domain.Gender
	ImageName string
}

// UpdateInput holds the mutable profile fields. Empty Password keeps the
// current one.
type UpdateInput struct {
	Name      string
	Password  string
	About     string
	Gender    domain.Gender
	ImageName string
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users []domain.User
	Page  repository.PageRequest
	Total int64
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:        deps.UserRepo,
		roles:        deps.RoleRepo,
		cache:        deps.Cache,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		bcryptCost:   cfg.BcryptCost,
		adminRoleID:  cfg.AdminRoleID,
		normalRoleID: cfg.NormalRoleID,
	}
}

// SeedRoles makes sure the ADMIN and NORMAL rows exist under their configured ids.
func (s *UserService) SeedRoles(ctx context.Context) error {
	if err := s.roles.Ensure(ctx, domain.Role{ID: s.adminRoleID, Name: domain.RoleAdmin}); err != nil {
		return err
	}
	return s.roles.Ensure(ctx, domain.Role{ID: s.normalRoleID, Name: domain.RoleNormal})
}

// Register creates an enabled account holding the NORMAL role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": in.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	role, err := s.roles.GetByID(ctx, s.normalRoleID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		About:        in.About,
		Gender:       in.Gender,
		ImageName:    in.ImageName,
		Enabled:      true,
		Roles:        []domain.Role{*role},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes a profile. Only the account owner or an ADMIN may do so.
func (s *UserService) Update(ctx context.Context, caller *auth.SecurityContext, id string, in UpdateInput) (*domain.User, error) {
	if err := auth.Authenticated(caller).Err(); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Identity() != user.Email && !caller.HasRole(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("cannot modify another user")
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	user.About = in.About
	user.Gender = in.Gender
	user.ImageName = in.ImageName
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewUserEvent(events.EventUserChanged, user.ID, caller.Identity()))
	return user, nil
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, id, actor string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return err
	}
	s.publish(ctx, events.NewUserEvent(events.EventUserDeleted, id, actor))
	return nil
}

// GetByID reads through the user cache. Fills never overwrite an entry
// invalidated by a concurrent write.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.cache != nil {
		user, err := s.cache.Get(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
		}
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if _, err := s.cache.Fill(ctx, user); err != nil {
			s.logger.Warn("user cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}

// GetByEmail looks a user up by login email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
	}
	return user, err
}

// Search returns users whose name contains keyword, ignoring case.
func (s *UserService) Search(ctx context.Context, keyword string) ([]domain.User, error) {
	return s.users.SearchByName(ctx, keyword)
}

// List returns one sorted page of users.
func (s *UserService) List(ctx context.Context, page repository.PageRequest) (*UserPage, error) {
	page = page.Normalize()
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Page: page, Total: total}, nil
}

// AssignAdmin grants the ADMIN role. Granting it twice is a no-op.
func (s *UserService) AssignAdmin(ctx context.Context, id, actor string) (*domain.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.HasRole(domain.RoleAdmin) {
		return user, nil
	}

	if err := s.users.AddRole(ctx, user.ID, s.adminRoleID); err != nil {
		return nil, err
	}
	user.Roles = append(user.Roles, domain.Role{ID: s.adminRoleID, Name: domain.RoleAdmin})
	s.publish(ctx, events.NewUserEvent(events.EventUserChanged, user.ID, actor))
	return user, nil
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	return user, err
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("user event handlers failed",
			zap.String("event", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
