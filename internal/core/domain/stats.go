package domain

import "errors"

var (
	ErrInvalidRange  = errors.New("start date cannot be after end date")
	ErrRangeTooLarge = errors.New("date range too large, max 1 year allowed")
)

// MaxStatsRangeDays bounds a stats range, both ends included.
const MaxStatsRangeDays = 366

type WeeklyStats struct {
	StartDate   Date        `json:"start_date"`
	EndDate     Date        `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate float64     `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID         string   `json:"habit_id"`
	HabitName       string   `json:"habit_name"`
	GoalType        GoalType `json:"goal_type"`
	TargetPerPeriod int      `json:"target_per_period"`
	TotalValue      int      `json:"total_value"`
	CompletionRate  float64  `json:"completion_rate"`
	DaysCompleted   int      `json:"days_completed"`
	DailyProgress   []int    `json:"daily_progress"`
}

// StatsInput bounds are optional; nil means "ending at the user's today" and "six days before the end".
type StatsInput struct {
	UserID    string
	StartDate *Date
	EndDate   *Date
}
