package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/utils"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// CreateAccount persists user together with its profile, an empty streak row and,
// when admin is set, the admin role. Runs inside tx.
func CreateAccount(tx *gorm.DB, user *models.User, fullName string, admin bool) (*models.Profile, error) {
	if err := tx.Create(user).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	seed := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	profile := models.Profile{ID: user.ID, Email: user.Email, AvatarSeed: &seed}
	if name := strings.TrimSpace(fullName); name != "" {
		profile.FullName = &name
	}
	if err := tx.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if err := tx.Create(&models.UserStreak{UserID: user.ID, Badges: []string{}}).Error; err != nil {
		return nil, fmt.Errorf("create streak: %w", err)
	}
	if admin {
		if err := GrantRole(tx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

// GrantRole assigns role to the user, ignoring an existing assignment.
func GrantRole(tx *gorm.DB, userID, role string) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, Role: role}).Error
	if err != nil {
		return fmt.Errorf("grant role %s: %w", role, err)
	}
	return nil
}

// RoleNames returns the roles held by the user, cached under cache:roles:<uid>.
func RoleNames(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	return utils.Remember("cache:roles:"+userID, 0, func() ([]string, error) {
		roles := []string{}
		err := db.WithContext(ctx).Model(&models.UserRole{}).
			Where("user_id = ?", userID).
			Order("role ASC").
			Pluck("role", &roles).Error
		return roles, err
	})
}

// HasRole reports whether the user holds role.
func HasRole(ctx context.Context, db *gorm.DB, userID, role string) (bool, error) {
	roles, err := RoleNames(ctx, db, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

// SeedAdmins grants the admin role to existing users whose email is listed and verified.
func SeedAdmins(ctx context.Context, db *gorm.DB, emails []string) (int, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			lowered = append(lowered, e)
		}
	}
	var users []models.User
	if err := db.WithContext(ctx).Where("LOWER(email) IN ? AND email_verified = ?", lowered, true).Find(&users).Error; err != nil {
		return 0, fmt.Errorf("find admin users: %w", err)
	}
	for _, u := range users {
		if err := GrantRole(db.WithContext(ctx), u.ID, models.RoleAdmin); err != nil {
			return 0, err
		}
		utils.InvalidateByPrefix("cache:roles:" + u.ID)
	}
	return len(users), nil
}
