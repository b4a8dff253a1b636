package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/codestreak/models"
)

var (
	// ErrDuplicateCheckIn is returned when the user already checked into the challenge on that date.
	ErrDuplicateCheckIn = errors.New("duplicate check-in")
	// ErrChallengeNotFound is returned for unknown challenge ids.
	ErrChallengeNotFound = errors.New("challenge not found")
)

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateCheckIn) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// CheckInRequest describes one completion.
type CheckInRequest struct {
	UserID      string
	ChallengeID string
	Quote       string
	Date        string // YYYY-MM-DD
	// Quotes fills in Quote when it is empty. It is consulted only once the
	// challenge exists and the check-in is not a duplicate.
	Quotes QuoteSource
}

// RecordCheckIn inserts the check-in and advances the user's streak in one transaction.
func RecordCheckIn(ctx context.Context, db *gorm.DB, req CheckInRequest) (*models.CheckIn, *models.UserStreak, error) {
	var challenge models.Challenge
	if err := db.WithContext(ctx).Select("id").First(&challenge, "id = ?", req.ChallengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrChallengeNotFound
		}
		return nil, nil, fmt.Errorf("load challenge: %w", err)
	}

	quote := strings.TrimSpace(req.Quote)
	if quote == "" && req.Quotes != nil {
		var existing int64
		err := db.WithContext(ctx).Model(&models.CheckIn{}).
			Where("user_id = ? AND challenge_id = ? AND checked_in_date = ?", req.UserID, req.ChallengeID, req.Date).
			Count(&existing).Error
		if err != nil {
			return nil, nil, fmt.Errorf("check duplicate: %w", err)
		}
		if existing > 0 {
			return nil, nil, ErrDuplicateCheckIn
		}
		quote = strings.TrimSpace(req.Quotes.Random(ctx))
	}

	record := models.CheckIn{
		UserID:        req.UserID,
		ChallengeID:   req.ChallengeID,
		CheckedInDate: req.Date,
	}
	if quote != "" {
		record.MotivationalQuote = &quote
	}

	var streak models.UserStreak
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if IsDuplicate(err) {
				return ErrDuplicateCheckIn
			}
			return fmt.Errorf("insert check-in: %w", err)
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&streak, "user_id = ?", req.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			streak = models.UserStreak{UserID: req.UserID, Badges: []string{}}
		} else if err != nil {
			return fmt.Errorf("load streak: %w", err)
		}

		AdvanceStreak(&streak, req.Date)
		if err := tx.Save(&streak).Error; err != nil {
			return fmt.Errorf("save streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &record, &streak, nil
}

// ListCheckIns returns the user's check-ins, newest date first.
func ListCheckIns(ctx context.Context, db *gorm.DB, userID string) ([]models.CheckIn, error) {
	items := []models.CheckIn{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checked_in_date DESC").
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// LoadStreak returns the user's streak row, or a zero row when none exists yet.
func LoadStreak(ctx context.Context, db *gorm.DB, userID string) (models.UserStreak, error) {
	var s models.UserStreak
	err := db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserStreak{UserID: userID, Badges: []string{}}, nil
	}
	return s, err
}
