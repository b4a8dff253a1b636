package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
)

func TestRecordCheckInAdvancesStreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "dev@example.com", false)
	challenge := seedChallenge(t, db, "Reverse a linked list")

	for i, date := range []string{"2026-10-12", "2026-10-13", "2026-10-14"} {
		record, streak, err := RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: challenge.ID, Quote: "keep going", Date: date})
		require.NoError(t, err)
		assert.Equal(t, date, record.CheckedInDate)
		require.NotNil(t, record.MotivationalQuote)
		assert.Equal(t, i+1, streak.CurrentStreak)
	}

	streak, err := LoadStreak(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
	assert.Equal(t, 3, streak.TotalChallengesCompleted)
	assert.Equal(t, []string{BadgeBronze}, streak.Badges)
	assert.Equal(t, "2026-10-14", *streak.LastCheckInDate)

	items, err := ListCheckIns(ctx, db, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "2026-10-14", items[0].CheckedInDate)
	assert.Equal(t, "2026-10-12", items[2].CheckedInDate)
}

func TestRecordCheckInDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "dup@example.com", false)
	challenge := seedChallenge(t, db, "FizzBuzz")

	req := CheckInRequest{UserID: user.ID, ChallengeID: challenge.ID, Date: "2026-10-14"}
	_, _, err := RecordCheckIn(ctx, db, req)
	require.NoError(t, err)

	_, _, err = RecordCheckIn(ctx, db, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCheckIn))

	streak, err := LoadStreak(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.TotalChallengesCompleted, "rolled back duplicate must not count")

	var count int64
	require.NoError(t, db.Model(&models.CheckIn{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordCheckInSecondChallengeSameDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "two@example.com", false)
	first := seedChallenge(t, db, "Two Sum")
	second := seedChallenge(t, db, "Valid Parentheses")

	_, _, err := RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: first.ID, Date: "2026-10-14"})
	require.NoError(t, err)
	_, streak, err := RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: second.ID, Date: "2026-10-14"})
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 2, streak.TotalChallengesCompleted)
}

func TestRecordCheckInUnknownChallenge(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ghost@example.com", false)
	_, _, err := RecordCheckIn(context.Background(), db, CheckInRequest{UserID: user.ID, ChallengeID: "missing", Date: "2026-10-14"})
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

type countingQuotes struct{ calls int }

func (q *countingQuotes) Random(context.Context) string {
	q.calls++
	return "Fetched. - Quotes"
}

func TestRecordCheckInFetchesQuoteOnlyWhenAccepted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "quotes@example.com", false)
	challenge := seedChallenge(t, db, "Binary search")
	quotes := &countingQuotes{}

	_, _, err := RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: "missing", Date: "2026-10-14", Quotes: quotes})
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.Zero(t, quotes.calls)

	record, _, err := RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: challenge.ID, Date: "2026-10-14", Quotes: quotes})
	require.NoError(t, err)
	require.NotNil(t, record.MotivationalQuote)
	assert.Equal(t, "Fetched. - Quotes", *record.MotivationalQuote)
	assert.Equal(t, 1, quotes.calls)

	_, _, err = RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: challenge.ID, Date: "2026-10-14", Quotes: quotes})
	assert.ErrorIs(t, err, ErrDuplicateCheckIn)
	assert.Equal(t, 1, quotes.calls)

	// a client supplied quote skips the source
	record, _, err = RecordCheckIn(ctx, db, CheckInRequest{UserID: user.ID, ChallengeID: challenge.ID, Date: "2026-10-15", Quote: "Mine. - Me", Quotes: quotes})
	require.NoError(t, err)
	assert.Equal(t, "Mine. - Me", *record.MotivationalQuote)
	assert.Equal(t, 1, quotes.calls)
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicate(errors.New("Error 1062: Duplicate entry 'x' for key 'idx_check_in_once'")))
	assert.True(t, IsDuplicate(errors.New("UNIQUE constraint failed: check_ins.user_id")))
	assert.False(t, IsDuplicate(errors.New("connection refused")))
}
