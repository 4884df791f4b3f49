package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

type LogService struct {
	repo   domain.HabitLogRepository
	habits *HabitService
	worker StreakEnqueuer
}

func NewLogService(repo domain.HabitLogRepository, habits *HabitService, worker StreakEnqueuer) *LogService {
	return &LogService{
		repo:   repo,
		habits: habits,
		worker: worker,
	}
}

type CreateLogInput struct {
	HabitID string
	UserID  string
	Date    domain.Date
	Value   *int
}

func (s *LogService) Create(ctx context.Context, input CreateLogInput) (*domain.HabitLog, error) {
	value := 1
	if input.Value != nil {
		value = *input.Value
	}

	entry := domain.NewHabitLog(input.HabitID, input.UserID, input.Date, value)
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.habits.Get(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return nil, domain.ErrHabitArchived
	}

	exists, err := s.repo.ExistsForDate(ctx, habit.ID, entry.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrLogExists
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.worker.Enqueue(habit.ID)

	return entry, nil
}

func (s *LogService) List(ctx context.Context, habitID, userID string, from, to *domain.Date) ([]*domain.HabitLog, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, domain.ErrInvalidRange
	}

	if _, err := s.habits.Get(ctx, habitID, userID); err != nil {
		return nil, err
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *LogService) Delete(ctx context.Context, habitID, logID, userID string) error {
	entry, err := s.repo.GetByID(ctx, logID)
	if err != nil {
		return err
	}

	if entry.UserID != userID || entry.HabitID != habitID {
		return domain.ErrLogNotFound
	}

	if err := s.repo.Delete(ctx, logID, userID); err != nil {
		return err
	}

	s.worker.Enqueue(habitID)

	return nil
}
