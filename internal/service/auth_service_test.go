package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"accessapi/internal/model"
	"accessapi/internal/obs"
	"accessapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestAuthService_LoginSuccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "alice", "secret123")

	res := env.authSvc.Login(context.Background(), LoginUserRequest{Username: "alice", Password: "secret123"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, MsgLoginSuccess, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, "bearer", res.Data.TokenType)
	assert.EqualValues(t, 30*60, res.Data.ExpiresIn)
	assert.Equal(t, user.ID, res.Data.User.ID)

	claims, err := env.tokens.VerifyAccess(res.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, user.ID, claims.UserID)

	refresh, err := env.tokens.VerifyRefresh(res.Data.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", refresh.Subject)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "bob", "secret123")
	ctx := context.Background()

	wrongPassword := env.authSvc.Login(ctx, LoginUserRequest{Username: "bob", Password: "nope-nope"})
	unknownUser := env.authSvc.Login(ctx, LoginUserRequest{Username: "nobody", Password: "secret123"})

	assert.Equal(t, wrongPassword, unknownUser)
	assert.False(t, wrongPassword.Success)
	assert.Equal(t, MsgInvalidCredentials, wrongPassword.Message)
	assert.Nil(t, wrongPassword.Data)
}

func TestAuthService_LoginInactive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "carol", "secret123")
	env.deactivate(t, user.ID)
	ctx := context.Background()

	res := env.authSvc.Login(ctx, LoginUserRequest{Username: "carol", Password: "secret123"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgAccountDeactivated, res.Message)
	assert.Nil(t, res.Data)

	// Without the right password the account state stays hidden.
	res = env.authSvc.Login(ctx, LoginUserRequest{Username: "carol", Password: "wrong-pass"})
	assert.Equal(t, MsgInvalidCredentials, res.Message)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "dan", "secret123")
	ctx := context.Background()

	ok, err := env.authSvc.Authenticate(ctx, "dan", "secret123")
	require.NoError(t, err)
	assert.Equal(t, AuthOK, ok.Status)
	require.NotNil(t, ok.User)
	assert.Equal(t, user.ID, ok.User.ID)

	bad, err := env.authSvc.Authenticate(ctx, "dan", "bad")
	require.NoError(t, err)
	assert.Equal(t, AuthBadCredentials, bad.Status)
	assert.Nil(t, bad.User)

	env.deactivate(t, user.ID)
	inactive, err := env.authSvc.Authenticate(ctx, "dan", "secret123")
	require.NoError(t, err)
	assert.Equal(t, AuthInactive, inactive.Status)
	assert.Equal(t, MsgAccountDeactivated, inactive.Message())
}

func TestAuthService_RefreshRotatesPair(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "erin", "secret123")
	ctx := context.Background()

	login := env.authSvc.Login(ctx, LoginUserRequest{Username: "erin", Password: "secret123"})
	require.True(t, login.Success)

	res := env.authSvc.Refresh(ctx, RefreshTokenRequest{RefreshToken: login.Data.RefreshToken})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, MsgRefreshSuccess, res.Message)
	assert.NotEqual(t, login.Data.RefreshToken, res.Data.RefreshToken)
	assert.Equal(t, "erin", res.Data.User.Username)

	_, err := env.tokens.VerifyAccess(res.Data.AccessToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "frank", "secret123")
	ctx := context.Background()

	login := env.authSvc.Login(ctx, LoginUserRequest{Username: "frank", Password: "secret123"})
	require.True(t, login.Success)

	res := env.authSvc.Refresh(ctx, RefreshTokenRequest{RefreshToken: login.Data.AccessToken})
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidRefreshToken, res.Message)

	res = env.authSvc.Refresh(ctx, RefreshTokenRequest{RefreshToken: "garbage"})
	assert.Equal(t, MsgInvalidRefreshToken, res.Message)
}

func TestAuthService_RefreshExpired(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "gwen", "secret123")
	ctx := context.Background()

	svc := env.authSvc.(*authService)
	svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	login := svc.Login(ctx, LoginUserRequest{Username: "gwen", Password: "secret123"})
	require.True(t, login.Success)

	res := svc.Refresh(ctx, RefreshTokenRequest{RefreshToken: login.Data.RefreshToken})
	assert.Equal(t, MsgInvalidRefreshToken, res.Message)
}

func TestAuthService_RefreshDeactivatedUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "hank", "secret123")
	ctx := context.Background()

	login := env.authSvc.Login(ctx, LoginUserRequest{Username: "hank", Password: "secret123"})
	require.True(t, login.Success)
	env.deactivate(t, user.ID)

	res := env.authSvc.Refresh(ctx, RefreshTokenRequest{RefreshToken: login.Data.RefreshToken})
	assert.False(t, res.Success)
	assert.Equal(t, MsgUserUnavailable, res.Message)
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset by peer"))

	before := promtest.ToFloat64(obs.AuthAttempts.WithLabelValues("login", "error"))
	svc := NewAuthService(repository.NewUserRepository(db), newTestTokens())
	res := svc.Login(context.Background(), LoginUserRequest{Username: "ivy", Password: "secret123"})

	assert.False(t, res.Success)
	assert.Equal(t, MsgLoginError, res.Message)
	assert.NotContains(t, res.Message, "connection reset")
	assert.Equal(t, before+1, promtest.ToFloat64(obs.AuthAttempts.WithLabelValues("login", "error")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type panickingUsers struct {
	repository.UserRepository
}

func (panickingUsers) GetByUsername(context.Context, string) (*model.User, error) {
	panic("boom")
}

func TestAuthService_RecoversFromPanic(t *testing.T) {
	t.Parallel()
	tokens := newTestTokens()
	svc := NewAuthService(panickingUsers{}, tokens)
	ctx := context.Background()

	res := svc.Login(ctx, LoginUserRequest{Username: "x", Password: "y"})
	assert.Equal(t, LoginResponse{Message: MsgLoginError}, res)

	refresh, err := tokens.IssueRefreshToken("x", 1, time.Now())
	require.NoError(t, err)
	res = svc.Refresh(ctx, RefreshTokenRequest{RefreshToken: refresh})
	assert.Equal(t, LoginResponse{Message: MsgRefreshError}, res)
}
