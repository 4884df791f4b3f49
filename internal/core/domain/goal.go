package domain

import (
	"errors"
	"strings"
)

var ErrInvalidGoalType = errors.New("invalid goal type (must be DAILY, WEEKLY or X_PER_WEEK)")

// GoalType tags how a habit's periods qualify.
type GoalType string

const (
	// GoalDaily qualifies a day with at least one log.
	GoalDaily GoalType = "DAILY"
	// GoalXPerWeek qualifies a Monday-anchored week with at least TargetPerPeriod logged days.
	GoalXPerWeek GoalType = "X_PER_WEEK"
	// GoalWeekly is accepted by the API but has no streak calculator; its streaks are always zero.
	GoalWeekly GoalType = "WEEKLY"
)

func ParseGoalType(s string) (GoalType, error) {
	switch g := GoalType(strings.ToUpper(strings.TrimSpace(s))); g {
	case GoalDaily, GoalXPerWeek, GoalWeekly:
		return g, nil
	default:
		return "", ErrInvalidGoalType
	}
}

func (g GoalType) String() string { return string(g) }

type HabitGoal struct {
	Type            GoalType `json:"goal_type"`
	TargetPerPeriod int      `json:"target_per_period"`
}
