package streak

import (
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

const daysPerWeek = 7

// WeekStart returns the Monday of the week containing d.
func WeekStart(d domain.Date) domain.Date {
	offset := (int(d.Weekday()) - int(time.Monday) + daysPerWeek) % daysPerWeek
	return d.AddDays(-offset)
}

// ComputeWeekly returns the streaks of a habit that must be logged on at
// least target distinct days of every Monday-anchored week.
//
// The week containing today is still open, so when it has not met the quota
// yet the current streak is counted from the week before. Two missed weeks in
// a row reset it.
func ComputeWeekly(logs domain.LogDateSet, today domain.Date, target int) domain.StreakResult {
	if target <= 0 || logs.Len() == 0 {
		return domain.StreakResult{}
	}

	perWeek := make(map[domain.Date]int)
	for _, d := range logs.Sorted() {
		perWeek[WeekStart(d)]++
	}

	successful := make(map[domain.Date]bool, len(perWeek))
	for week, count := range perWeek {
		if count >= target {
			successful[week] = true
		}
	}

	best := 0
	for week := range successful {
		if successful[week.AddDays(-daysPerWeek)] {
			continue
		}
		run := 1
		for successful[week.AddDays(run*daysPerWeek)] {
			run++
		}
		if run > best {
			best = run
		}
	}

	start := WeekStart(today)
	if !successful[start] {
		start = start.AddDays(-daysPerWeek)
	}

	current := 0
	for week := start; successful[week]; week = week.AddDays(-daysPerWeek) {
		current++
	}

	return domain.StreakResult{CurrentStreak: current, BestStreak: best}
}
