package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves the user's habits ordered by creation time.
	// Archived habits are skipped unless includeArchived is set.
	ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*Habit, error)

	// ListActive retrieves the habits shown on the dashboard for day:
	// not archived, started on or before day, ordered by creation time.
	ListActive(ctx context.Context, userID string, day Date) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// UpdateStreaks stores the last computed streak snapshot.
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type HabitLogRepository interface {
	// Create persists a new log. A second log for the same habit and date yields ErrLogExists.
	Create(ctx context.Context, log *HabitLog) error

	GetByID(ctx context.Context, id string) (*HabitLog, error)

	// ExistsForDate reports whether the habit already has a log on date.
	ExistsForDate(ctx context.Context, habitID string, date Date) (bool, error)

	// ListByHabitID retrieves logs of a habit ordered by date. Nil bounds are open.
	ListByHabitID(ctx context.Context, habitID string, from, to *Date) ([]*HabitLog, error)

	// ListByHabitIDs retrieves the user's logs for several habits with date <= until, in one round trip.
	ListByHabitIDs(ctx context.Context, userID string, habitIDs []string, until Date) ([]*HabitLog, error)

	// ListByUserIDAndDateRange retrieves all the user's logs with from <= date <= to.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to Date) ([]*HabitLog, error)

	// Delete removes a log. It requires userID to ensure the user owns it.
	Delete(ctx context.Context, id string, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
