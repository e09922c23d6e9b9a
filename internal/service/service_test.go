package service

import (
	"context"
	"testing"
	"time"

	"accessapi/internal/auth"
	"accessapi/internal/model"
	"accessapi/internal/repository"
	"accessapi/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	users  repository.UserRepository
	rbac   repository.RBACRepository
	audit  repository.AuditRepository
	tokens *auth.TokenService

	userSvc  UserService
	authSvc  AuthService
	rbacSvc  RBACService
	auditSvc AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	env := &testEnv{
		db:     db,
		users:  repository.NewUserRepository(db),
		rbac:   repository.NewRBACRepository(db),
		audit:  repository.NewAuditRepository(db),
		tokens: newTestTokens(),
	}
	tx := repository.NewTransactionManager(db)
	env.userSvc = NewUserService(env.users, env.rbac, env.audit, tx)
	env.authSvc = NewAuthService(env.users, env.tokens)
	env.rbacSvc = NewRBACService(env.rbac, env.audit, tx)
	env.auditSvc = NewAuditService(env.audit)
	return env
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService([]byte("access-secret"), []byte("refresh-secret"), 30*time.Minute, 7*24*time.Hour)
}

func (e *testEnv) register(t *testing.T, username, password string) *UserRead {
	t.Helper()
	user, err := e.userSvc.CreateUser(context.Background(), CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) deactivate(t *testing.T, id uint) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", id).Update("is_active", false).Error)
}

func (e *testEnv) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}
