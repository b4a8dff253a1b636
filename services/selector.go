package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
)

// DayOfYear counts days elapsed since January 0 of t's year, so January 1 is 1.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// SelectTodaysChallenge picks challenges[dayOfYear(today) mod n] among the active
// entries of challenges, which must be ordered by ascending creation time.
// It returns nil when there is no active challenge.
func SelectTodaysChallenge(challenges []models.Challenge, today time.Time) *models.Challenge {
	active := make([]models.Challenge, 0, len(challenges))
	for _, c := range challenges {
		if c.IsActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}
	picked := active[DayOfYear(today)%len(active)]
	return &picked
}

// ActiveChallenges loads active challenges in selection order.
func ActiveChallenges(ctx context.Context, db *gorm.DB) ([]models.Challenge, error) {
	var items []models.Challenge
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}
