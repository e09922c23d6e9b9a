package model

import (
	"time"
)

// User is an account. HashedPassword is nil for external (SSO) accounts.
type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName       *string   `gorm:"type:varchar(255)" json:"full_name"`
	HashedPassword *string   `gorm:"type:varchar(255)" json:"-"` // Never serialized
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	GoAccessID     *string   `gorm:"column:goaccess_id;type:varchar(255)" json:"-"`
	RoleID         *uint     `gorm:"index" json:"role_id"`
	Role           *Role     `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
