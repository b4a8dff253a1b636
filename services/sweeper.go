package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/utils"
)

// SweepLapsedStreaks resets current_streak for users whose last check-in is older than yesterday.
func SweepLapsedStreaks(ctx context.Context, db *gorm.DB, today string) (int64, error) {
	yesterday := previousDate(today)
	res := db.WithContext(ctx).Model(&models.UserStreak{}).
		Where("current_streak > 0").
		Where("last_check_in_date IS NULL OR last_check_in_date < ?", yesterday).
		Update("current_streak", 0)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		utils.InvalidateByPrefix("cache:streak:")
	}
	return res.RowsAffected, nil
}

// StartStreakSweeper runs SweepLapsedStreaks every interval until ctx is cancelled.
// It is best-effort and logs failures.
func StartStreakSweeper(ctx context.Context, db *gorm.DB, interval time.Duration, loc *time.Location) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := SweepLapsedStreaks(ctx, db, DateString(now, loc))
				if err != nil {
					utils.Sugar.Warnf("streak sweep failed: %v", err)
					continue
				}
				if n > 0 {
					utils.Sugar.Infof("streak sweep reset %d lapsed streaks", n)
				}
			}
		}
	}()
}
