package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/config"
	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.Set(config.AppConfig{JWTSecret: "test-secret", DBDriver: "sqlite", LogLevel: "silent"})
	utils.FlushMemoryCache()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Get()
	cfg.DatabaseURI = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := config.OpenDatabase(cfg, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, admin bool) models.User {
	t.Helper()
	user := models.User{Email: email}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := CreateAccount(tx, &user, "", admin)
		return err
	}))
	return user
}

func seedChallenge(t *testing.T, db *gorm.DB, title string) models.Challenge {
	t.Helper()
	c := models.Challenge{Title: title, Difficulty: models.DifficultyBeginner, IsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return c
}
