package domain

import "sort"

// LogDateSet holds the distinct days on which a habit was logged.
// It is never mutated after construction.
type LogDateSet struct {
	dates map[Date]struct{}
}

func NewLogDateSet(dates ...Date) LogDateSet {
	set := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return LogDateSet{dates: set}
}

func (s LogDateSet) Contains(d Date) bool {
	_, ok := s.dates[d]
	return ok
}

func (s LogDateSet) Len() int { return len(s.dates) }

// Sorted returns the dates in ascending order.
func (s LogDateSet) Sorted() []Date {
	out := make([]Date, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// HabitHistory pairs a habit with its logged days up to the reference date.
type HabitHistory struct {
	Habit    *Habit
	LogDates LogDateSet
}

type DashboardItem struct {
	HabitID          string `json:"habit_id"`
	Habit            *Habit `json:"habit"`
	IsCompletedToday bool   `json:"is_completed"`
	CurrentStreak    int    `json:"current_streak"`
	BestStreak       int    `json:"best_streak"`
}

type DashboardToday struct {
	Date   Date            `json:"date"`
	Habits []DashboardItem `json:"habits"`
}
