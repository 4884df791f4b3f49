package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

type DashboardService struct {
	userRepo  domain.UserRepository
	habitRepo domain.HabitRepository
	logRepo   domain.HabitLogRepository
	fallback  *time.Location
	now       func() time.Time
}

// NewDashboardService uses fallback for users whose stored timezone is empty or unknown.
func NewDashboardService(userRepo domain.UserRepository, habitRepo domain.HabitRepository, logRepo domain.HabitLogRepository, fallback *time.Location) *DashboardService {
	if fallback == nil {
		fallback = time.UTC
	}
	return &DashboardService{
		userRepo:  userRepo,
		habitRepo: habitRepo,
		logRepo:   logRepo,
		fallback:  fallback,
		now:       time.Now,
	}
}

func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Today resolves the user's local day once and builds the dashboard of every active habit against it.
func (s *DashboardService) Today(ctx context.Context, userID string) (*domain.DashboardToday, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.todayFor(user)

	habits, err := s.habitRepo.ListActive(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	if len(habits) == 0 {
		return &domain.DashboardToday{Date: today, Habits: []domain.DashboardItem{}}, nil
	}

	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}

	logs, err := s.logRepo.ListByHabitIDs(ctx, userID, ids, today)
	if err != nil {
		return nil, err
	}

	byHabit := domain.LogDatesByHabit(logs)

	histories := make([]domain.HabitHistory, 0, len(habits))
	for _, h := range habits {
		histories = append(histories, domain.HabitHistory{Habit: h, LogDates: byHabit[h.ID]})
	}

	return &domain.DashboardToday{
		Date:   today,
		Habits: streak.BuildToday(today, histories),
	}, nil
}

// Streak computes one habit's streaks for the owner's today.
func (s *DashboardService) Streak(ctx context.Context, userID, habitID string) (*domain.StreakResult, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.todayFor(user)

	logs, err := s.logRepo.ListByHabitIDs(ctx, userID, []string{habit.ID}, today)
	if err != nil {
		return nil, err
	}

	result := streak.Compute(habit.Goal(), domain.LogDatesByHabit(logs)[habit.ID], today)
	return &result, nil
}

func (s *DashboardService) todayFor(user *domain.User) domain.Date {
	return domain.DateOf(s.now().In(user.Location(s.fallback)))
}
