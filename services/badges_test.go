package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBadge(t *testing.T) {
	cases := []struct {
		name      string
		streak    int
		earned    []string
		want      string
		remaining int
		ok        bool
	}{
		{"fresh user", 0, nil, BadgeBronze, 3, true},
		{"bronze reached", 3, nil, BadgeSilver, 4, true},
		{"silver reached", 7, []string{BadgeBronze, BadgeSilver}, BadgeGold, 23, true},
		{"all earned", 30, []string{BadgeBronze, BadgeSilver, BadgeGold}, "", 0, false},
		{"earned badge is skipped", 1, []string{BadgeBronze}, BadgeSilver, 6, true},
		{"negative streak", -4, nil, BadgeBronze, 3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, remaining, ok := NextBadge(tc.streak, tc.earned)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, next.Badge)
			assert.Equal(t, tc.remaining, remaining)
		})
	}
}

func TestEarnedAt(t *testing.T) {
	assert.Empty(t, EarnedAt(2))
	assert.Equal(t, []string{BadgeBronze}, EarnedAt(3))
	assert.Equal(t, []string{BadgeBronze, BadgeSilver}, EarnedAt(29))
	assert.Equal(t, []string{BadgeBronze, BadgeSilver, BadgeGold}, EarnedAt(45))
}

func TestMergeBadgesKeepsMilestoneOrder(t *testing.T) {
	got := MergeBadges([]string{BadgeGold, "legacy"}, []string{BadgeBronze, BadgeGold})
	assert.Equal(t, []string{BadgeBronze, BadgeGold, "legacy"}, got)
	assert.Empty(t, MergeBadges(nil, nil))
}
