package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenErrorKind classifies why a token could not be decoded.
type TokenErrorKind string

const (
	KindMalformedToken    TokenErrorKind = "malformed_token"
	KindExpiredToken      TokenErrorKind = "expired_token"
	KindInvalidArgument   TokenErrorKind = "invalid_argument"
	KindUnknownTokenError TokenErrorKind = "unknown_token_error"
)

// Sentinels for errors.Is against a *TokenError.
var (
	ErrMalformedToken    = errors.New("malformed token")
	ErrExpiredToken      = errors.New("token expired")
	ErrInvalidArgument   = errors.New("token argument invalid")
	ErrUnknownTokenError = errors.New("unknown token error")
)

// TokenError is returned by Decode for every failure.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel belonging to the error's kind.
func (e *TokenError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k TokenErrorKind) sentinel() error {
	switch k {
	case KindMalformedToken:
		return ErrMalformedToken
	case KindExpiredToken:
		return ErrExpiredToken
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrUnknownTokenError
	}
}

// TokenKind extracts the classification of a Decode error.
func TokenKind(err error) (TokenErrorKind, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Kind, true
	}
	return "", false
}

// Claims describes the JWT payload. Only registered claims are carried;
// roles are always read from the identity record, never from the token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, validitySeconds int) *TokenManager {
	if validitySeconds <= 0 {
		validitySeconds = 5 * 60 * 60
	}
	return &TokenManager{
		secret:   []byte(secret),
		validity: time.Duration(validitySeconds) * time.Second,
		now:      time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *tm
	clone.now = now
	return &clone
}

// Validity reports the configured token lifetime.
func (tm *TokenManager) Validity() time.Duration {
	return tm.validity
}

// Issue builds and signs a JWT for subject.
func (tm *TokenManager) Issue(subject string) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, errors.New("subject must not be empty")
	}

	// NumericDate carries whole seconds; iat and exp must stay exactly validity apart
	issuedAt := tm.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.validity)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Decode validates the token and returns its claims. Every failure is a *TokenError.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, &TokenError{Kind: KindInvalidArgument, Err: errors.New("token is empty")}
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &TokenError{Kind: KindUnknownTokenError, Err: errors.New("invalid token claims")}
	}
	if claims.Subject == "" {
		return nil, &TokenError{Kind: KindMalformedToken, Err: errors.New("token has no subject")}
	}
	return claims, nil
}

// ExtractSubject returns the identity the token was issued for.
func ExtractSubject(claims *Claims) string {
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// classify orders the checks so a bad signature is never reported as expiry.
func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: KindMalformedToken, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: KindExpiredToken, Err: err}
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return &TokenError{Kind: KindMalformedToken, Err: err}
	default:
		return &TokenError{Kind: KindUnknownTokenError, Err: err}
	}
}
