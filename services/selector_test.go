package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/codestreak/models"
)

func TestDayOfYear(t *testing.T) {
	assert.Equal(t, 1, DayOfYear(time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 32, DayOfYear(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 366, DayOfYear(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestSelectTodaysChallenge(t *testing.T) {
	items := []models.Challenge{
		{ID: "a", Title: "A", IsActive: true},
		{ID: "b", Title: "B", IsActive: true},
		{ID: "c", Title: "C", IsActive: true},
	}

	jan1 := time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC)
	got := SelectTodaysChallenge(items, jan1)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID) // 1 mod 3

	jan3 := jan1.AddDate(0, 0, 2)
	assert.Equal(t, "a", SelectTodaysChallenge(items, jan3).ID) // 3 mod 3

	// same day, same answer
	later := jan1.Add(10 * time.Hour)
	assert.Equal(t, got.ID, SelectTodaysChallenge(items, later).ID)
}

func TestSelectTodaysChallengeSkipsInactive(t *testing.T) {
	items := []models.Challenge{
		{ID: "a", IsActive: false},
		{ID: "b", IsActive: true},
	}
	got := SelectTodaysChallenge(items, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)

	assert.Nil(t, SelectTodaysChallenge(nil, time.Now()))
	assert.Nil(t, SelectTodaysChallenge([]models.Challenge{{ID: "x"}}, time.Now()))
}

func TestActiveChallengesOrder(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	inserts := []struct {
		title string
		hour  int
	}{{"second", 1}, {"first", 0}, {"third", 2}}
	for _, in := range inserts {
		c := models.Challenge{Title: in.title, Difficulty: models.DifficultyBeginner, IsActive: true, CreatedAt: base.Add(time.Duration(in.hour) * time.Hour)}
		require.NoError(t, db.Create(&c).Error)
	}
	hidden := models.Challenge{Title: "hidden", Difficulty: models.DifficultyBeginner, IsActive: true}
	require.NoError(t, db.Create(&hidden).Error)
	require.NoError(t, db.Model(&hidden).Update("is_active", false).Error)

	items, err := ActiveChallenges(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].Title)
	assert.Equal(t, "second", items[1].Title)
	assert.Equal(t, "third", items[2].Title)
}
