package services

// Badge names awarded for streak milestones.
const (
	BadgeBronze = "bronze"
	BadgeSilver = "silver"
	BadgeGold   = "gold"
)

// Milestone binds a badge to the streak length that unlocks it.
type Milestone struct {
	Badge string `json:"badge"`
	Days  int    `json:"days"`
}

// Milestones in ascending threshold order.
var Milestones = []Milestone{
	{Badge: BadgeBronze, Days: 3},
	{Badge: BadgeSilver, Days: 7},
	{Badge: BadgeGold, Days: 30},
}

// NextBadge returns the first milestone that is not yet earned and whose threshold
// is above streak, together with the days still missing. ok is false once every
// remaining badge is either earned or already within reach of the streak.
func NextBadge(streak int, earned []string) (next Milestone, remaining int, ok bool) {
	if streak < 0 {
		streak = 0
	}
	have := make(map[string]bool, len(earned))
	for _, b := range earned {
		have[b] = true
	}
	for _, m := range Milestones {
		if have[m.Badge] || streak >= m.Days {
			continue
		}
		return m, m.Days - streak, true
	}
	return Milestone{}, 0, false
}

// EarnedAt lists the badges unlocked by a streak of the given length.
func EarnedAt(streak int) []string {
	var out []string
	for _, m := range Milestones {
		if streak >= m.Days {
			out = append(out, m.Badge)
		}
	}
	return out
}

// MergeBadges unions two badge sets in milestone order. Unknown names are kept at the end.
func MergeBadges(existing, add []string) []string {
	seen := make(map[string]bool, len(existing)+len(add))
	for _, b := range existing {
		seen[b] = true
	}
	for _, b := range add {
		seen[b] = true
	}
	out := make([]string, 0, len(seen))
	for _, m := range Milestones {
		if seen[m.Badge] {
			out = append(out, m.Badge)
			delete(seen, m.Badge)
		}
	}
	for _, b := range existing {
		if seen[b] {
			out = append(out, b)
			delete(seen, b)
		}
	}
	return out
}
