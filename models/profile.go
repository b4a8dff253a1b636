package models

import "time"

// Profile is 1:1 with a User and shares its id.
type Profile struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	FullName   *string   `gorm:"size:255" json:"full_name"`
	AvatarSeed *string   `gorm:"size:64" json:"avatar_seed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
