package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProviderLocal marks accounts that sign in with email and password.
const ProviderLocal = "local"

// User is a login identity. Passwords are stored as bcrypt hashes only.
// EmailVerified is set when the owner proved the address by mailed code or
// the OAuth provider vouched for it; only verified addresses can hold admin.
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	PasswordHash  string    `gorm:"size:255" json:"-"`
	Provider      string    `gorm:"size:32;index:idx_users_provider" json:"provider"`
	ProviderID    string    `gorm:"size:255;index:idx_users_provider" json:"provider_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid primary key when missing.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Provider == "" {
		u.Provider = ProviderLocal
	}
	return nil
}
