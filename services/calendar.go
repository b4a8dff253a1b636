package services

import (
	"sort"
	"time"

	"github.com/cppla/codestreak/models"
)

const (
	calendarMonths = 6
	calendarRecent = 5
)

// MonthCount is the number of check-ins in one calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Calendar summarizes a user's completions for the progress calendar.
type Calendar struct {
	Dates        []string         `json:"dates"`
	Total        int              `json:"total"`
	ThisMonth    int              `json:"this_month"`
	DistinctDays int              `json:"distinct_days"`
	Monthly      []MonthCount     `json:"monthly"`
	Recent       []models.CheckIn `json:"recent"`
}

// BuildCalendar groups check-ins by month. now decides which month is "this month".
func BuildCalendar(checkIns []models.CheckIn, now time.Time) Calendar {
	sorted := make([]models.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CheckedInDate > sorted[j].CheckedInDate
	})

	cal := Calendar{
		Dates:   make([]string, 0, len(sorted)),
		Total:   len(sorted),
		Monthly: []MonthCount{},
		Recent:  []models.CheckIn{},
	}

	days := map[string]bool{}
	counts := map[string]int{}
	var months []time.Time
	for _, ci := range sorted {
		cal.Dates = append(cal.Dates, ci.CheckedInDate)
		days[ci.CheckedInDate] = true
		d, err := time.Parse(models.DateLayout, ci.CheckedInDate)
		if err != nil {
			continue
		}
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		label := monthLabel(first)
		if _, ok := counts[label]; !ok {
			months = append(months, first)
		}
		counts[label]++
	}
	cal.DistinctDays = len(days)
	cal.ThisMonth = counts[monthLabel(now)]

	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	for i, m := range months {
		if i == calendarMonths {
			break
		}
		label := monthLabel(m)
		cal.Monthly = append(cal.Monthly, MonthCount{Month: label, Count: counts[label]})
	}

	if len(sorted) > calendarRecent {
		sorted = sorted[:calendarRecent]
	}
	cal.Recent = append(cal.Recent, sorted...)
	return cal
}

func monthLabel(t time.Time) string {
	return t.Format("January 2006")
}
