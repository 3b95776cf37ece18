package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

var issueTime = time.Unix(1_700_000_000, 0)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func managerAt(at time.Time) *TokenManager {
	return NewTokenManager(testSecret, 3600).WithClock(fixedClock(at))
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestIssueProducesCompactJWT(t *testing.T) {
	token, exp, err := managerAt(issueTime).Issue("a@x.com")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(token, "."))
	assert.Equal(t, issueTime.Add(time.Hour), exp)

	claims, err := managerAt(issueTime).Decode(token)
	require.NoError(t, err)
	assert.Equal(t, issueTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issueTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	_, _, err := managerAt(issueTime).Issue(" ")
	assert.Error(t, err)
}

func TestDecodeRoundTripBeforeExpiry(t *testing.T) {
	token, _, err := managerAt(issueTime).Issue("a@x.com")
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Minute, 3599 * time.Second} {
		claims, err := managerAt(issueTime.Add(offset)).Decode(token)
		require.NoError(t, err, "offset %s", offset)
		assert.Equal(t, "a@x.com", ExtractSubject(claims))
	}
}

func TestIssueAtFractionalSecondKeepsFullValidity(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 22, 13, 20, 700_000_000, time.UTC)
	tm := NewTokenManager(testSecret, 10).WithClock(fixedClock(issuedAt))

	token, exp, err := tm.Issue("a@x.com")
	require.NoError(t, err)

	claims, err := managerAt(issuedAt).Decode(token)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.True(t, exp.Equal(claims.ExpiresAt.Time))

	iat := claims.IssuedAt.Time
	_, err = managerAt(iat.Add(10*time.Second - time.Nanosecond)).Decode(token)
	assert.NoError(t, err)

	_, err = managerAt(iat.Add(10 * time.Second)).Decode(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestDecodeExpiredAtAndAfterBoundary(t *testing.T) {
	token, _, err := managerAt(issueTime).Issue("a@x.com")
	require.NoError(t, err)

	for _, offset := range []time.Duration{time.Hour, time.Hour + time.Second, 48 * time.Hour} {
		_, err := managerAt(issueTime.Add(offset)).Decode(token)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExpiredToken, "offset %s", offset)
		kind, ok := TokenKind(err)
		assert.True(t, ok)
		assert.Equal(t, KindExpiredToken, kind)
	}
}

func TestDecodeAlteredSignatureIsMalformed(t *testing.T) {
	token, _, err := managerAt(issueTime).Issue("a@x.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = managerAt(issueTime).Decode(tampered)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestDecodeAlteredSignatureAfterExpiryIsStillMalformed(t *testing.T) {
	token, _, err := managerAt(issueTime).Issue("a@x.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = managerAt(issueTime.Add(2 * time.Hour)).Decode(tampered)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestDecodeFailureKinds(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Subject:   "a@x.com",
		IssuedAt:  jwt.NewNumericDate(issueTime),
		ExpiresAt: jwt.NewNumericDate(issueTime.Add(time.Hour)),
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  error
	}{
		{
			name:  "empty string",
			token: func(*testing.T) string { return "" },
			want:  ErrInvalidArgument,
		},
		{
			name:  "whitespace only",
			token: func(*testing.T) string { return "   " },
			want:  ErrInvalidArgument,
		},
		{
			name:  "not three segments",
			token: func(*testing.T) string { return "abc.def" },
			want:  ErrMalformedToken,
		},
		{
			name:  "garbage segments",
			token: func(*testing.T) string { return "a.b.c" },
			want:  ErrMalformedToken,
		},
		{
			name: "signed with another secret",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodHS256, []byte("other-secret"), valid)
			},
			want: ErrMalformedToken,
		},
		{
			name: "alg none",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)
			},
			want: ErrMalformedToken,
		},
		{
			name: "different hmac algorithm",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), valid)
			},
			want: ErrMalformedToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
					Subject:  "a@x.com",
					IssuedAt: jwt.NewNumericDate(issueTime),
				})
			},
			want: ErrMalformedToken,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(issueTime),
					ExpiresAt: jwt.NewNumericDate(issueTime.Add(time.Hour)),
				})
			},
			want: ErrMalformedToken,
		},
		{
			name: "not valid yet",
			token: func(t *testing.T) string {
				return signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
					Subject:   "a@x.com",
					IssuedAt:  jwt.NewNumericDate(issueTime),
					NotBefore: jwt.NewNumericDate(issueTime.Add(30 * time.Minute)),
					ExpiresAt: jwt.NewNumericDate(issueTime.Add(time.Hour)),
				})
			},
			want: ErrUnknownTokenError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := managerAt(issueTime).Decode(tt.token(t))
			assert.Nil(t, claims)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var tokenErr *TokenError
			assert.ErrorAs(t, err, &tokenErr)
		})
	}
}

func TestTokenKindOnForeignError(t *testing.T) {
	_, ok := TokenKind(assert.AnError)
	assert.False(t, ok)
}

func TestExtractSubjectNil(t *testing.T) {
	assert.Equal(t, "", ExtractSubject(nil))
}
