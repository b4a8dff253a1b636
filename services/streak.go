package services

import (
	"time"

	"github.com/cppla/codestreak/models"
)

// DateString formats t as a check-in date in loc.
func DateString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(models.DateLayout)
}

// previousDate returns the calendar day before date (YYYY-MM-DD).
func previousDate(date string) string {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format(models.DateLayout)
}

// AdvanceStreak applies one check-in made on today (YYYY-MM-DD) to s.
// A second check-in on the same day only counts towards the total.
func AdvanceStreak(s *models.UserStreak, today string) {
	switch {
	case s.LastCheckInDate != nil && *s.LastCheckInDate == today:
		if s.CurrentStreak == 0 {
			s.CurrentStreak = 1
		}
	case s.LastCheckInDate != nil && *s.LastCheckInDate == previousDate(today):
		s.CurrentStreak++
	default:
		s.CurrentStreak = 1
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.Badges = MergeBadges(s.Badges, EarnedAt(s.CurrentStreak))
	s.TotalChallengesCompleted++
	last := today
	s.LastCheckInDate = &last
}

// Lapsed reports whether the streak was broken by a missed day before today.
func Lapsed(s models.UserStreak, today string) bool {
	if s.CurrentStreak == 0 {
		return false
	}
	if s.LastCheckInDate == nil {
		return true
	}
	last := *s.LastCheckInDate
	return last != today && last != previousDate(today)
}

// EffectiveStreak returns s with current_streak reset when it has lapsed.
func EffectiveStreak(s models.UserStreak, today string) models.UserStreak {
	if Lapsed(s, today) {
		s.CurrentStreak = 0
	}
	if s.Badges == nil {
		s.Badges = []string{}
	}
	return s
}
