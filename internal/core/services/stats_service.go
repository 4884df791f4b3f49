package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

type StatsService struct {
	userRepo  domain.UserRepository
	habitRepo domain.HabitRepository
	logRepo   domain.HabitLogRepository
	fallback  *time.Location
	now       func() time.Time
}

func NewStatsService(userRepo domain.UserRepository, habitRepo domain.HabitRepository, logRepo domain.HabitLogRepository, fallback *time.Location) *StatsService {
	if fallback == nil {
		fallback = time.UTC
	}
	return &StatsService{
		userRepo:  userRepo,
		habitRepo: habitRepo,
		logRepo:   logRepo,
		fallback:  fallback,
		now:       time.Now,
	}
}

func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

// GetWeeklyStats reports, per active habit, which days of the range were logged.
func (s *StatsService) GetWeeklyStats(ctx context.Context, input domain.StatsInput) (*domain.WeeklyStats, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	endDate := domain.DateOf(s.now().In(user.Location(s.fallback)))
	if input.EndDate != nil {
		endDate = *input.EndDate
	}

	startDate := endDate.AddDays(-6)
	if input.StartDate != nil {
		startDate = *input.StartDate
	}

	if startDate.After(endDate) {
		return nil, domain.ErrInvalidRange
	}
	if startDate.DaysUntil(endDate)+1 > domain.MaxStatsRangeDays {
		return nil, domain.ErrRangeTooLarge
	}

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID, false)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByUserIDAndDateRange(ctx, input.UserID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	valuesMap := make(map[string]map[domain.Date]int)
	loggedMap := make(map[string]map[domain.Date]bool)
	for _, l := range logs {
		if _, exists := valuesMap[l.HabitID]; !exists {
			valuesMap[l.HabitID] = make(map[domain.Date]int)
			loggedMap[l.HabitID] = make(map[domain.Date]bool)
		}
		valuesMap[l.HabitID][l.Date] += l.Value
		loggedMap[l.HabitID][l.Date] = true
	}

	stats := &domain.WeeklyStats{
		StartDate:   startDate,
		EndDate:     endDate,
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}

	totalDaysPossible := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		hStat := domain.HabitStat{
			HabitID:         h.ID,
			HabitName:       h.Name,
			GoalType:        h.GoalType,
			TargetPerPeriod: h.TargetPerPeriod,
			DailyProgress:   make([]int, 0, startDate.DaysUntil(endDate)+1),
		}

		daysInPeriod := 0

		for day := startDate; !day.After(endDate); day = day.AddDays(1) {
			val := valuesMap[h.ID][day]

			hStat.TotalValue += val
			hStat.DailyProgress = append(hStat.DailyProgress, val)

			if loggedMap[h.ID][day] {
				hStat.DaysCompleted++
				totalDaysCompleted++
			}

			daysInPeriod++
			totalDaysPossible++
		}

		if daysInPeriod > 0 {
			hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(daysInPeriod) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysPossible > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysPossible) * 100
	}

	return stats, nil
}
