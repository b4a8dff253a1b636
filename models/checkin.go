package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the storage format of check-in dates.
const DateLayout = "2006-01-02"

// CheckIn records that a user completed a challenge on a date.
// (user_id, challenge_id, checked_in_date) is unique.
type CheckIn struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"size:36;not null;uniqueIndex:idx_check_in_once,priority:1;index" json:"user_id"`
	ChallengeID       string    `gorm:"size:36;not null;uniqueIndex:idx_check_in_once,priority:2" json:"challenge_id"`
	CheckedInDate     string    `gorm:"size:10;not null;uniqueIndex:idx_check_in_once,priority:3" json:"checked_in_date"`
	MotivationalQuote *string   `gorm:"type:text" json:"motivational_quote"`
	CreatedAt         time.Time `json:"created_at"`
}

// BeforeCreate assigns a uuid primary key when missing.
func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
