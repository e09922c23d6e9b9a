package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService([]byte("test-access-secret"), []byte("test-refresh-secret"), 0, 0)
}

func uintPtr(v uint) *uint { return &v }

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}

func TestHashPassword_Empty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("")
	require.Error(t, err)
}

func TestHashPassword_LengthLimit(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("", "anything"))
	assert.False(t, VerifyPassword("not-a-bcrypt-digest", "anything"))
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	now := time.Now()

	token, err := svc.IssueAccessToken("alice", 7, uintPtr(3), now)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, uint(7), claims.UserID)
	require.NotNil(t, claims.RoleID)
	assert.Equal(t, uint(3), *claims.RoleID)
	assert.Empty(t, claims.Type)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	now := time.Now()

	token, err := svc.IssueRefreshToken("alice", 7, now)
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokenService_Verify_Invalid(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	now := time.Now()
	access, err := svc.IssueAccessToken("alice", 1, nil, now)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	forgedClaims, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           999,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("other"))
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(forgedClaims, ".")[1] + "." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "wrong secret", token: access, secret: []byte("wrong")},
		{name: "forged payload", token: forged, secret: svc.AccessSecret},
		{name: "malformed", token: "not-a-jwt", secret: svc.AccessSecret},
		{name: "empty", token: "", secret: svc.AccessSecret},
		{name: "alg none", token: noneToken, secret: svc.AccessSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := svc.Verify(tt.token, tt.secret)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	token, err := svc.IssueAccessToken("alice", 1, nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Verify_UsesClock(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	issued := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	token, err := svc.IssueAccessToken("alice", 1, nil, issued)
	require.NoError(t, err)

	svc.Now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = svc.VerifyAccess(token)
	require.NoError(t, err)

	svc.Now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = svc.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	// Shaped like an access token but signed with the refresh secret: only the type check can reject it.
	sameSecret := &TokenService{AccessSecret: svc.RefreshSecret, AccessTTL: time.Minute}
	token, err := sameSecret.IssueAccessToken("alice", 1, nil, time.Now())
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := svc.IssueAccessToken("alice", 1, nil, time.Now())
	require.NoError(t, err)
	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyAccess_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	sameSecret := &TokenService{RefreshSecret: svc.AccessSecret, RefreshTTL: time.Minute}
	token, err := sameSecret.IssueRefreshToken("alice", 1, time.Now())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshTokensAreUnique(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService()
	now := time.Now()
	a, err := svc.IssueRefreshToken("alice", 1, now)
	require.NoError(t, err)
	b, err := svc.IssueRefreshToken("alice", 1, now)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
