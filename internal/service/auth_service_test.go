package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/domain"
	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestLoginIssuesTokenForEmail(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		ID: "u-1", Email: "a@x.com", PasswordHash: hashed(t, "pw"), Enabled: true,
	}, nil)
	tokens := auth.NewTokenManager("secret", 3600)

	user, token, exp, err := NewAuthService(repo, tokens).Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.False(t, exp.IsZero())

	claims, err := tokens.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", auth.ExtractSubject(claims))
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		err  error
		pw   string
	}{
		{"unknown email", nil, pgx.ErrNoRows, "pw"},
		{"wrong password", &domain.User{Email: "a@x.com", PasswordHash: hashed(t, "pw"), Enabled: true}, nil, "nope"},
		{"disabled", &domain.User{Email: "a@x.com", PasswordHash: hashed(t, "pw"), Enabled: false}, nil, "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepo)
			repo.On("GetByEmail", mock.Anything, "a@x.com").Return(tt.user, tt.err)

			_, token, _, err := NewAuthService(repo, auth.NewTokenManager("secret", 3600)).Login(context.Background(), "a@x.com", tt.pw)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
		})
	}
}
