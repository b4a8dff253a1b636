package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleAdmin grants access to challenge management.
const RoleAdmin = "admin"

// UserRole assigns a named role to a user.
type UserRole struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_user_role,priority:1" json:"user_id"`
	Role   string `gorm:"size:32;not null;uniqueIndex:idx_user_role,priority:2" json:"role"`
}

// BeforeCreate assigns a uuid primary key when missing.
func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
