package model

// Role is assigned to users and owns grants in role_resource_permissions.
type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// Module groups resources, e.g. "Firmware".
type Module struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// Resource is a protected screen or data set, e.g. "firmware_update".
type Resource struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	ModuleID    *uint   `gorm:"index" json:"module_id"`
	Module      *Module `gorm:"foreignKey:ModuleID" json:"-"`
}

// Permission is an action name such as "view" or "edit".
type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// RoleResourcePermission grants a Permission on a Resource to a Role. The triple is unique.
type RoleResourcePermission struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       uint        `gorm:"not null;uniqueIndex:_role_resource_permission_uc" json:"role_id"`
	ResourceID   uint        `gorm:"not null;uniqueIndex:_role_resource_permission_uc" json:"resource_id"`
	PermissionID uint        `gorm:"not null;uniqueIndex:_role_resource_permission_uc" json:"permission_id"`
	Role         *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"-"`
	Resource     *Resource   `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE;" json:"-"`
	Permission   *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName keeps the plural join table name used by existing databases.
func (RoleResourcePermission) TableName() string {
	return "role_resource_permissions"
}

// ResourcePermission is one (resource, permission) pair granted to a role.
type ResourcePermission struct {
	Resource   string `json:"resource"`
	Permission string `json:"permission"`
}
