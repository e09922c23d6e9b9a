package model

import (
	"time"
)

const (
	ActionRegisterUser = "REGISTER_USER"
	ActionAssignRole   = "ASSIGN_ROLE"
	ActionSeedRBAC     = "SEED_RBAC"
)

// AuditLog tracks Who, What, and When for account and access changes
type AuditLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"` // Nil for system actions such as seeding
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;" json:"user"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
