// Package streak turns a habit's logged days into current and best streaks,
// and projects a user's habits into the dashboard for one reference day.
//
// Everything here is pure and safe for concurrent use.
package streak

import "github.com/comitanigiacomo/kanso-streaks/internal/core/domain"

// Compute picks the calculator matching the goal type.
func Compute(goal domain.HabitGoal, logs domain.LogDateSet, today domain.Date) domain.StreakResult {
	switch goal.Type {
	case domain.GoalDaily:
		return ComputeDaily(logs, today)
	case domain.GoalXPerWeek:
		return ComputeWeekly(logs, today, goal.TargetPerPeriod)
	case domain.GoalWeekly:
		// No calculator exists for plain weekly goals.
		return domain.StreakResult{}
	default:
		return domain.StreakResult{}
	}
}

// BuildToday builds one dashboard item per habit, in input order.
// today must be the same value for every habit of the view.
func BuildToday(today domain.Date, habits []domain.HabitHistory) []domain.DashboardItem {
	items := make([]domain.DashboardItem, 0, len(habits))

	for _, h := range habits {
		result := Compute(h.Habit.Goal(), h.LogDates, today)

		items = append(items, domain.DashboardItem{
			HabitID:          h.Habit.ID,
			Habit:            h.Habit,
			IsCompletedToday: h.LogDates.Contains(today),
			CurrentStreak:    result.CurrentStreak,
			BestStreak:       result.BestStreak,
		})
	}

	return items
}
