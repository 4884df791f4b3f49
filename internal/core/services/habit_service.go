package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// StreakEnqueuer schedules a background streak refresh for a habit.
type StreakEnqueuer interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo   domain.HabitRepository
	worker StreakEnqueuer
}

func NewHabitService(repo domain.HabitRepository, worker StreakEnqueuer) *HabitService {
	return &HabitService{
		repo:   repo,
		worker: worker,
	}
}

// CreateHabitInput defaults TargetPerPeriod to 1 when it is nil.
type CreateHabitInput struct {
	UserID          string
	Name            string
	Description     string
	GoalType        string
	TargetPerPeriod *int
	StartDate       domain.Date
}

// UpdateHabitInput leaves a field unchanged when it is nil.
type UpdateHabitInput struct {
	ID              string
	UserID          string
	Name            *string
	Description     *string
	GoalType        *string
	TargetPerPeriod *int
	StartDate       *domain.Date
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	goal := domain.GoalDaily
	if input.GoalType != "" {
		parsed, err := domain.ParseGoalType(input.GoalType)
		if err != nil {
			return nil, err
		}
		goal = parsed
	}

	target := 1
	if input.TargetPerPeriod != nil {
		target = *input.TargetPerPeriod
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.Description, goal, target, input.StartDate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// Get returns the habit if it belongs to userID. Other users' habits are reported as not found.
func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return habit, nil
}

func (s *HabitService) List(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID, includeArchived)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	name := habit.Name
	if input.Name != nil {
		name = *input.Name
	}

	desc := habit.Description
	if input.Description != nil {
		desc = *input.Description
	}

	goal := habit.GoalType
	if input.GoalType != nil {
		parsed, err := domain.ParseGoalType(*input.GoalType)
		if err != nil {
			return nil, err
		}
		goal = parsed
	}

	target := habit.TargetPerPeriod
	if input.TargetPerPeriod != nil {
		target = *input.TargetPerPeriod
	}

	start := habit.StartDate
	if input.StartDate != nil {
		start = *input.StartDate
	}

	goalChanged := goal != habit.GoalType || target != habit.TargetPerPeriod

	if err := habit.Update(name, desc, goal, target, start); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if goalChanged {
		s.worker.Enqueue(habit.ID)
	}

	return habit, nil
}

// Archive hides the habit from the dashboard. Its logs are kept.
func (s *HabitService) Archive(ctx context.Context, id, userID string) error {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}

	if habit.IsArchived() {
		return nil
	}

	habit.Archive()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !habit.IsArchived() {
		return habit, nil
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.worker.Enqueue(habit.ID)

	return habit, nil
}
