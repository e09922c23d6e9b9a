package service

import (
	"accessapi/internal/auth"
	"accessapi/internal/logging"
	"accessapi/internal/model"
	"accessapi/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const MinPasswordLength = 6

var errPasswordTooLong = &ValidationError{Message: fmt.Sprintf("Password must be at most %d bytes long", auth.MaxPasswordBytes)}

// DTOs for Request validation
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	FullName *string `json:"full_name"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	RoleID   *uint   `json:"role_id"`
}

// UserRead is the public view of a user. It never carries the password digest.
type UserRead struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	RoleID    *uint     `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MeResponse struct {
	UserRead
	Permissions []model.ResourcePermission `json:"permissions"`
}

type AssignRoleResponse struct {
	Message  string `json:"message"`
	UserID   uint   `json:"user_id"`
	RoleID   uint   `json:"role_id"`
	RoleName string `json:"role_name"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserRead, error)
	GetUserByID(ctx context.Context, id uint) (*UserRead, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserRead, int64, error)
	AssignRole(ctx context.Context, userID, roleID uint) (*AssignRoleResponse, error)
	GetMe(ctx context.Context, userID uint) (*MeResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	rbacRepo  repository.RBACRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	rbacRepo repository.RBACRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{repo: repo, rbacRepo: rbacRepo, auditRepo: auditRepo, txManager: txManager}
}

// ToUserRead maps the model to the public view.
func ToUserRead(user *model.User) *UserRead {
	return &UserRead{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		RoleID:    user.RoleID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func validateCreateUser(req CreateUserRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return &ValidationError{Message: "Username is required"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return &ValidationError{Message: "Invalid email format"}
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength)}
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserRead, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	if err := validateCreateUser(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, &repository.DuplicateError{Field: "email"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if req.RoleID != nil {
		if _, err := s.rbacRepo.FindRoleByID(ctx, *req.RoleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ValidationError{Message: "Role does not exist"}
			}
			return nil, fmt.Errorf("lookup role: %w", err)
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, errPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: &hashed,
		IsActive:       true,
		RoleID:         req.RoleID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]interface{}{
			"email":   user.Email,
			"role_id": user.RoleID,
		})
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionRegisterUser,
			EntityID:   strconv.FormatUint(uint64(user.ID), 10),
			EntityName: user.Username,
			Details:    string(details),
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			l.Warn("register_failed", "reason", "duplicate", "error", err)
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return ToUserRead(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserRead, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToUserRead(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserRead, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserRead, 0, len(users))
	for i := range users {
		responses = append(responses, *ToUserRead(&users[i]))
	}
	return responses, total, nil
}

// AssignRole updates the role and writes the audit entry in one transaction.
func (s *userService) AssignRole(ctx context.Context, userID, roleID uint) (*AssignRoleResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.assign_role", "user_id", userID, "role_id", roleID)

	var res *AssignRoleResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, role, err := s.repo.SetRole(txCtx, userID, roleID)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"role_id":   role.ID,
			"role_name": role.Name,
		})
		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionAssignRole,
			EntityID:   strconv.FormatUint(uint64(user.ID), 10),
			EntityName: user.Username,
			Details:    string(details),
		}); err != nil {
			return fmt.Errorf("audit assign role: %w", err)
		}

		res = &AssignRoleResponse{
			Message:  fmt.Sprintf("Role '%s' assigned to user '%s'", role.Name, user.Username),
			UserID:   user.ID,
			RoleID:   role.ID,
			RoleName: role.Name,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			l.Error("assign_role_failed", "error", err)
		}
		return nil, err
	}

	l.Info("assign_role_success")
	return res, nil
}

// GetMe returns the user with the (resource, permission) pairs granted through their role.
func (s *userService) GetMe(ctx context.Context, userID uint) (*MeResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := []model.ResourcePermission{}
	if user.RoleID != nil {
		perms, err = s.rbacRepo.PermissionsForRole(ctx, *user.RoleID)
		if err != nil {
			return nil, err
		}
	}
	return &MeResponse{UserRead: *ToUserRead(user), Permissions: perms}, nil
}
