package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accessapi/internal/auth"
	"accessapi/internal/logging"
	"accessapi/internal/model"
	"accessapi/internal/obs"
	"accessapi/internal/repository"
)

// Client-facing messages of the login and refresh flows.
const (
	MsgInvalidCredentials  = "Invalid username or password"
	MsgAccountDeactivated  = "Account is deactivated. Please contact administrator."
	MsgLoginSuccess        = "Login successful"
	MsgLoginError          = "An error occurred during login. Please try again."
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgUserUnavailable     = "User not found or inactive"
	MsgRefreshSuccess      = "Token refreshed successfully"
	MsgRefreshError        = "An error occurred during token refresh. Please try again."
	MsgInvalidPayload      = "Invalid request payload"
)

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         UserRead `json:"user"`
}

// LoginResponse is the uniform envelope of the login and refresh flows, success or not.
type LoginResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *TokenResponse `json:"data"`
}

func failure(message string) LoginResponse {
	return LoginResponse{Success: false, Message: message}
}

// AuthStatus enumerates the outcomes of a credential check.
type AuthStatus int

const (
	AuthOK AuthStatus = iota
	AuthBadCredentials
	AuthInactive
)

func (s AuthStatus) String() string {
	switch s {
	case AuthOK:
		return "ok"
	case AuthBadCredentials:
		return "bad_credentials"
	case AuthInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// AuthOutcome is the result of Authenticate. User is set only for AuthOK.
type AuthOutcome struct {
	Status AuthStatus
	User   *model.User
}

// Message maps a failed outcome to its client-facing text. Unknown users and wrong passwords share one message.
func (o AuthOutcome) Message() string {
	switch o.Status {
	case AuthOK:
		return MsgLoginSuccess
	case AuthInactive:
		return MsgAccountDeactivated
	default:
		return MsgInvalidCredentials
	}
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (AuthOutcome, error)
	Login(ctx context.Context, req LoginUserRequest) LoginResponse
	Refresh(ctx context.Context, req RefreshTokenRequest) LoginResponse
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{users: users, tokens: tokens, now: time.Now}
}

// Authenticate checks credentials first and activity second, so an inactive account is only
// revealed to a caller who knows its password.
func (s *authService) Authenticate(ctx context.Context, username, password string) (AuthOutcome, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.VerifyPassword("", password)
			return AuthOutcome{Status: AuthBadCredentials}, nil
		}
		return AuthOutcome{}, fmt.Errorf("lookup user: %w", err)
	}

	digest := ""
	if user.HashedPassword != nil {
		digest = *user.HashedPassword
	}
	if !auth.VerifyPassword(digest, password) {
		return AuthOutcome{Status: AuthBadCredentials}, nil
	}

	if !user.IsActive {
		return AuthOutcome{Status: AuthInactive}, nil
	}
	return AuthOutcome{Status: AuthOK, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req LoginUserRequest) (res LoginResponse) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)
	defer recoverInto(&res, l.Error, "login", MsgLoginError)

	outcome, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		l.Error("login_failed", "reason", "internal", "error", err)
		obs.AuthAttempts.WithLabelValues("login", "error").Inc()
		return failure(MsgLoginError)
	}
	obs.AuthAttempts.WithLabelValues("login", outcome.Status.String()).Inc()
	if outcome.Status != AuthOK {
		l.Warn("login_failed", "reason", outcome.Status.String())
		return failure(outcome.Message())
	}

	tokens, err := s.issuePair(outcome.User)
	if err != nil {
		l.Error("login_failed", "reason", "cannot create token", "error", err)
		return failure(MsgLoginError)
	}

	l.Info("login_successful", "user_id", outcome.User.ID)
	return LoginResponse{Success: true, Message: MsgLoginSuccess, Data: tokens}
}

// Refresh rotates the pair: a valid refresh token for an active user yields a fresh access and refresh token.
func (s *authService) Refresh(ctx context.Context, req RefreshTokenRequest) (res LoginResponse) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")
	defer recoverInto(&res, l.Error, "refresh", MsgRefreshError)

	claims, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		l.Warn("refresh_failed", "reason", "invalid_token")
		obs.AuthAttempts.WithLabelValues("refresh", "invalid_token").Inc()
		return failure(MsgInvalidRefreshToken)
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		l.Error("refresh_failed", "reason", "internal", "error", err)
		obs.AuthAttempts.WithLabelValues("refresh", "error").Inc()
		return failure(MsgRefreshError)
	}
	if user == nil || !user.IsActive {
		l.Warn("refresh_failed", "reason", "user_unavailable", "username", claims.Subject)
		obs.AuthAttempts.WithLabelValues("refresh", "inactive").Inc()
		return failure(MsgUserUnavailable)
	}

	tokens, err := s.issuePair(user)
	if err != nil {
		l.Error("refresh_failed", "reason", "cannot create token", "error", err)
		return failure(MsgRefreshError)
	}

	obs.AuthAttempts.WithLabelValues("refresh", "ok").Inc()
	l.Info("refresh_successful", "user_id", user.ID)
	return LoginResponse{Success: true, Message: MsgRefreshSuccess, Data: tokens}
}

func (s *authService) issuePair(user *model.User) (*TokenResponse, error) {
	now := s.now()
	access, err := s.tokens.IssueAccessToken(user.Username, user.ID, user.RoleID, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.Username, user.ID, now)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL.Seconds()),
		User:         *ToUserRead(user),
	}, nil
}

// recoverInto turns a panic inside an auth flow into the generic failure envelope.
func recoverInto(res *LoginResponse, logErr func(string, ...any), flow, message string) {
	if r := recover(); r != nil {
		logErr(flow+"_panic", "panic", fmt.Sprint(r))
		obs.AuthAttempts.WithLabelValues(flow, "error").Inc()
		*res = failure(message)
	}
}
