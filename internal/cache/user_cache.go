package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/hardware-store/internal/domain"
)

const (
	userKeyPrefix = "hardware:user:"
	// tombstone marks a recently invalidated key; Fill cannot overwrite it
	tombstone = "-"
	// InvalidationHold is how long a tombstone blocks fills after Delete.
	InvalidationHold = 5 * time.Second
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// UserCache stores user profiles keyed by id. Password hashes are never cached.
//
// Set writes unconditionally. Fill writes only when the key is absent, so a
// reader that loaded a row before an invalidation cannot put it back while
// the tombstone left by Delete is still alive.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Fill(ctx context.Context, user *domain.User) (bool, error)
	Delete(ctx context.Context, id string) error
}

type cachedRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cachedUser struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	About     string       `json:"about"`
	Gender    string       `json:"gender"`
	ImageName string       `json:"image_name"`
	Enabled   bool         `json:"enabled"`
	Roles     []cachedRole `json:"roles"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type redisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUserCache returns a UserCache backed by client. A zero ttl keeps
// entries until they are deleted.
func NewRedisUserCache(client *redis.Client, ttl time.Duration) UserCache {
	return &redisUserCache{client: client, ttl: ttl}
}

func (c *redisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	if string(raw) == tombstone {
		return nil, ErrMiss
	}

	var entry cachedUser
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return entry.toDomain(), nil
}

func (c *redisUserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(fromDomain(user))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKey(user.ID), raw, c.ttl).Err()
}

func (c *redisUserCache) Fill(ctx context.Context, user *domain.User) (bool, error) {
	raw, err := json.Marshal(fromDomain(user))
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, userKey(user.ID), raw, c.ttl).Result()
}

// Delete replaces the entry with a short-lived tombstone.
func (c *redisUserCache) Delete(ctx context.Context, id string) error {
	return c.client.Set(ctx, userKey(id), tombstone, InvalidationHold).Err()
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func fromDomain(u *domain.User) cachedUser {
	entry := cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		About:     u.About,
		Gender:    string(u.Gender),
		ImageName: u.ImageName,
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, r := range u.Roles {
		entry.Roles = append(entry.Roles, cachedRole{ID: r.ID, Name: string(r.Name)})
	}
	return entry
}

func (e cachedUser) toDomain() *domain.User {
	u := &domain.User{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		About:     e.About,
		Gender:    domain.Gender(e.Gender),
		ImageName: e.ImageName,
		Enabled:   e.Enabled,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	for _, r := range e.Roles {
		u.Roles = append(u.Roles, domain.Role{ID: r.ID, Name: domain.RoleName(r.Name)})
	}
	return u
}
