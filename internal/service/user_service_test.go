package service

import (
	"context"
	"strings"
	"testing"

	"accessapi/internal/auth"
	"accessapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	name := "Ada Lovelace"
	user, err := env.userSvc.CreateUser(ctx, CreateUserRequest{
		Username: "ada",
		Email:    "ada@example.com",
		FullName: &name,
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.Nil(t, user.RoleID)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HashedPassword)
	assert.NotEqual(t, "secret123", *stored.HashedPassword)
	assert.True(t, auth.VerifyPassword(*stored.HashedPassword, "secret123"))

	logs, total, err := env.audit.List(ctx, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.ActionRegisterUser, logs[0].Action)
	assert.Equal(t, "ada", logs[0].EntityName)
}

func TestUserService_CreateUser_ShortPasswordRejectedBeforeWrite(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.userSvc.CreateUser(context.Background(), CreateUserRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "12345",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "at least 6 characters")

	assert.Zero(t, env.count(t, &model.User{}))
	assert.Zero(t, env.count(t, &model.AuditLog{}))
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{"blank username", CreateUserRequest{Username: "  ", Email: "x@example.com", Password: "secret123"}},
		{"bad email", CreateUserRequest{Username: "x", Email: "not-an-email", Password: "secret123"}},
		{"unknown role", CreateUserRequest{Username: "x", Email: "x@example.com", Password: "secret123", RoleID: ptr(uint(99))}},
		{"three runes six bytes", CreateUserRequest{Username: "x", Email: "x@example.com", Password: "ééé"}},
		{"over 72 bytes", CreateUserRequest{Username: "x", Email: "x@example.com", Password: strings.Repeat("a", 73)}},
		{"40 runes 80 bytes", CreateUserRequest{Username: "x", Email: "x@example.com", Password: strings.Repeat("é", 40)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.userSvc.CreateUser(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, env.count(t, &model.User{}))
}

func TestUserService_CreateUser_PasswordLengthBounds(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.userSvc.CreateUser(ctx, CreateUserRequest{
		Username: "multi", Email: "multi@example.com", Password: "éééééé",
	})
	require.NoError(t, err, "six characters are enough even when multibyte")

	_, err = env.userSvc.CreateUser(ctx, CreateUserRequest{
		Username: "longest", Email: "longest@example.com", Password: strings.Repeat("a", 72),
	})
	require.NoError(t, err)

	_, err = env.userSvc.CreateUser(ctx, CreateUserRequest{
		Username: "toolong", Email: "toolong@example.com", Password: strings.Repeat("a", 73),
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "at most 72 bytes")
	assert.EqualValues(t, 2, env.count(t, &model.User{}))
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "carol", "secret123")

	_, err := env.userSvc.CreateUser(ctx, CreateUserRequest{
		Username: "carol2",
		Email:    "carol@example.com",
		Password: "secret123",
	})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
	assert.EqualValues(t, 1, env.count(t, &model.User{}))
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "dave", "secret123")

	_, err := env.userSvc.CreateUser(context.Background(), CreateUserRequest{
		Username: "dave",
		Email:    "other@example.com",
		Password: "secret123",
	})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.EqualValues(t, 1, env.count(t, &model.User{}))
	assert.EqualValues(t, 1, env.count(t, &model.AuditLog{}), "failed insert must not leave an audit row")
}

func TestUserService_GetAndList(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.register(t, "erin", "secret123")
	env.register(t, "frank", "secret123")
	env.register(t, "grace", "secret123")

	got, err := env.userSvc.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", got.Username)

	_, err = env.userSvc.GetUserByID(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	page, total, err := env.userSvc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "grace", page[0].Username)
}

func TestUserService_AssignRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.rbacSvc.Seed(ctx)
	require.NoError(t, err)

	user := env.register(t, "henry", "secret123")
	roles, err := env.rbacSvc.ListRoles(ctx)
	require.NoError(t, err)
	cleaner := roles[3]
	require.Equal(t, RoleClientCleaner, cleaner.Name)

	res, err := env.userSvc.AssignRole(ctx, user.ID, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Role 'Client Cleaner' assigned to user 'henry'", res.Message)
	assert.Equal(t, cleaner.ID, res.RoleID)

	me, err := env.userSvc.GetMe(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, me.RoleID)
	assert.Equal(t, cleaner.ID, *me.RoleID)
	assert.Equal(t, []model.ResourcePermission{
		{Resource: "cleaning_screen", Permission: "view"},
		{Resource: "cleaning_screen", Permission: "register"},
	}, me.Permissions)

	var assigned int64
	require.NoError(t, env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionAssignRole).Count(&assigned).Error)
	assert.EqualValues(t, 1, assigned)
}

func TestUserService_AssignRole_MissingTargetsDoNotMutate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.rbacSvc.Seed(ctx)
	require.NoError(t, err)
	user := env.register(t, "ivy", "secret123")
	auditBefore := env.count(t, &model.AuditLog{})

	roles, err := env.rbacSvc.ListRoles(ctx)
	require.NoError(t, err)

	_, err = env.userSvc.AssignRole(ctx, 9999, roles[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.userSvc.AssignRole(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RoleID)
	assert.Equal(t, auditBefore, env.count(t, &model.AuditLog{}))
}

func TestUserService_GetMe_WithoutRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "jack", "secret123")

	me, err := env.userSvc.GetMe(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jack", me.Username)
	assert.NotNil(t, me.Permissions)
	assert.Empty(t, me.Permissions)
}

func ptr[T any](v T) *T { return &v }
