package repository

import (
	"accessapi/internal/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	SetRole(ctx context.Context, userID, roleID uint) (*model.User, *model.Role, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create checks username and email before inserting. A concurrent insert that wins the race
// still surfaces here as a DuplicateError through the unique indexes.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	db := GetDB(ctx, r.db)

	for _, field := range []struct {
		column string
		value  string
	}{
		{"username", user.Username},
		{"email", user.Email},
	} {
		var count int64
		if err := db.Model(&model.User{}).Where(field.column+" = ?", field.value).Count(&count).Error; err != nil {
			return fmt.Errorf("check %s uniqueness: %w", field.column, err)
		}
		if count > 0 {
			return &DuplicateError{Field: field.column}
		}
	}

	if err := db.Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return &DuplicateError{}
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "username = ?", username).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("id asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetRole overwrites the user's role. Nothing is written unless both ids exist.
func (r *userRepository) SetRole(ctx context.Context, userID, roleID uint) (*model.User, *model.Role, error) {
	db := GetDB(ctx, r.db)

	var user model.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, nil, notFound("user", err)
	}

	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return nil, nil, notFound("role", err)
	}

	if err := db.Model(&user).Update("role_id", role.ID).Error; err != nil {
		return nil, nil, err
	}
	user.RoleID = &role.ID
	return &user, &role, nil
}
