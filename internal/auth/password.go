package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/hardware-store/pkg/util"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// HashPassword hashes an account password. A cost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperrors.NewValidationError("password too long",
			map[string]any{"max_bytes": maxPasswordBytes})
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports ErrPasswordMismatch when plain does not match the
// stored hash. A corrupt stored hash is returned as is.
func ComparePassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// ErrPasswordMismatch means the supplied password is wrong.
var ErrPasswordMismatch = errors.New("password mismatch")
