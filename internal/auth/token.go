package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry, malformed input, wrong type.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of both token kinds. Access tokens leave Type empty.
type Claims struct {
	UserID uint   `json:"user_id"`
	RoleID *uint  `json:"role_id,omitempty"`
	Type   string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens. Access and refresh tokens use distinct secrets.
type TokenService struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now is the verification clock; nil means time.Now.
	Now func() time.Time
}

func NewTokenService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) IssueAccessToken(username string, userID uint, roleID *uint, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
}

func (s *TokenService) IssueRefreshToken(username string, userID uint, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		Type:   TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
}

// Verify checks signature and expiry against secret. Every failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(token string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	claims, err := s.Verify(token, s.AccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh additionally requires type == "refresh", so a well-formed access token is rejected.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	claims, err := s.Verify(token, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
