package models

import "time"

// UserStreak aggregates a user's check-in history.
type UserStreak struct {
	UserID                   string    `gorm:"primaryKey;size:36" json:"user_id"`
	CurrentStreak            int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak            int       `gorm:"not null;default:0" json:"longest_streak"`
	Badges                   []string  `gorm:"type:text;serializer:json" json:"badges"`
	TotalChallengesCompleted int       `gorm:"not null;default:0" json:"total_challenges_completed"`
	LastCheckInDate          *string   `gorm:"size:10;index" json:"last_check_in_date"`
	UpdatedAt                time.Time `json:"updated_at"`
}
