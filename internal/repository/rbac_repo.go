package repository

import (
	"context"
	"errors"
	"fmt"

	"accessapi/internal/model"

	"gorm.io/gorm"
)

type RBACRepository interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	FindRoleByID(ctx context.Context, id uint) (*model.Role, error)
	PermissionsForRole(ctx context.Context, roleID uint) ([]model.ResourcePermission, error)

	FindOrCreateRole(ctx context.Context, role *model.Role) (bool, error)
	FindOrCreateModule(ctx context.Context, module *model.Module) (bool, error)
	FindOrCreateResource(ctx context.Context, resource *model.Resource) (bool, error)
	FindOrCreatePermission(ctx context.Context, perm *model.Permission) (bool, error)
	Grant(ctx context.Context, roleID, resourceID, permissionID uint) (bool, error)
}

type rbacRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) RBACRepository {
	return &rbacRepository{db: db}
}

// Full scans are returned in insertion (id) order.

func (r *rbacRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Order("id asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *rbacRepository) ListModules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	if err := GetDB(ctx, r.db).Order("id asc").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *rbacRepository) ListResources(ctx context.Context) ([]model.Resource, error) {
	var resources []model.Resource
	if err := GetDB(ctx, r.db).Order("id asc").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *rbacRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Order("id asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *rbacRepository) FindRoleByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, notFound("role", err)
	}
	return &role, nil
}

type grantRow struct {
	ResourceName   *string
	PermissionName *string
}

// PermissionsForRole joins role_resource_permissions to resources and permissions. An unknown role
// yields an empty list; a grant pointing at a missing resource or permission yields ErrNotFound.
func (r *rbacRepository) PermissionsForRole(ctx context.Context, roleID uint) ([]model.ResourcePermission, error) {
	var rows []grantRow
	err := GetDB(ctx, r.db).
		Table("role_resource_permissions AS rrp").
		Select("res.name AS resource_name, p.name AS permission_name").
		Joins("LEFT JOIN resources res ON res.id = rrp.resource_id").
		Joins("LEFT JOIN permissions p ON p.id = rrp.permission_id").
		Where("rrp.role_id = ?", roleID).
		Order("rrp.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.ResourcePermission, 0, len(rows))
	for _, row := range rows {
		if row.ResourceName == nil {
			return nil, &NotFoundError{Entity: "resource"}
		}
		if row.PermissionName == nil {
			return nil, &NotFoundError{Entity: "permission"}
		}
		out = append(out, model.ResourcePermission{Resource: *row.ResourceName, Permission: *row.PermissionName})
	}
	return out, nil
}

// findOrCreate loads the row matching column = value into dest, inserting dest when none exists.
// It reports whether a row was inserted.
func findOrCreate[T any](db *gorm.DB, dest *T, column string, value any) (bool, error) {
	var existing T
	err := db.Where(column+" = ?", value).First(&existing).Error
	if err == nil {
		*dest = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(dest).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *rbacRepository) FindOrCreateRole(ctx context.Context, role *model.Role) (bool, error) {
	return findOrCreate(GetDB(ctx, r.db), role, "name", role.Name)
}

func (r *rbacRepository) FindOrCreateModule(ctx context.Context, module *model.Module) (bool, error) {
	return findOrCreate(GetDB(ctx, r.db), module, "name", module.Name)
}

func (r *rbacRepository) FindOrCreateResource(ctx context.Context, resource *model.Resource) (bool, error) {
	return findOrCreate(GetDB(ctx, r.db), resource, "name", resource.Name)
}

func (r *rbacRepository) FindOrCreatePermission(ctx context.Context, perm *model.Permission) (bool, error) {
	return findOrCreate(GetDB(ctx, r.db), perm, "name", perm.Name)
}

// Grant inserts the triple unless it already exists and reports whether a row was created.
func (r *rbacRepository) Grant(ctx context.Context, roleID, resourceID, permissionID uint) (bool, error) {
	db := GetDB(ctx, r.db)
	var existing model.RoleResourcePermission
	err := db.Where("role_id = ? AND resource_id = ? AND permission_id = ?", roleID, resourceID, permissionID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	grant := model.RoleResourcePermission{RoleID: roleID, ResourceID: resourceID, PermissionID: permissionID}
	if err := db.Create(&grant).Error; err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("grant role %d resource %d permission %d: %w", roleID, resourceID, permissionID, err)
	}
	return true, nil
}
