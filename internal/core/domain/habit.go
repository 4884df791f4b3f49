package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidTarget      = errors.New("target per period must be at least 1")
	ErrStartDateRequired  = errors.New("start date is required")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

const (
	MaxNameLen = 100
	MaxDescLen = 500
)

type Habit struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description" db:"description"`
	GoalType        GoalType   `json:"goal_type" db:"goal_type"`
	TargetPerPeriod int        `json:"target_per_period" db:"target_per_period"`
	StartDate       Date       `json:"start_date" db:"start_date"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	BestStreak      int        `json:"best_streak" db:"best_streak"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func validateAndNormalize(name, desc string, goal GoalType, target int, start Date) (string, string, int, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return "", "", 0, ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(cleanName) > MaxNameLen {
		return "", "", 0, ErrHabitNameTooLong
	}

	cleanDesc := strings.TrimSpace(desc)
	if utf8.RuneCountInString(cleanDesc) > MaxDescLen {
		return "", "", 0, ErrHabitDescTooLong
	}

	if _, err := ParseGoalType(string(goal)); err != nil {
		return "", "", 0, err
	}

	finalTarget := target
	if goal == GoalDaily {
		finalTarget = 1
	} else if target < 1 {
		return "", "", 0, ErrInvalidTarget
	}

	if start.IsZero() {
		return "", "", 0, ErrStartDateRequired
	}

	return cleanName, cleanDesc, finalTarget, nil
}

func NewHabit(userID, name, description string, goal GoalType, target int, start Date) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, cleanDesc, safeTarget, err := validateAndNormalize(name, description, goal, target, start)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            cleanName,
		Description:     cleanDesc,
		GoalType:        goal,
		TargetPerPeriod: safeTarget,
		StartDate:       start,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (h *Habit) Update(name, description string, goal GoalType, target int, start Date) error {
	if h.IsArchived() {
		return ErrHabitArchived
	}

	cleanName, cleanDesc, safeTarget, err := validateAndNormalize(name, description, goal, target, start)
	if err != nil {
		return err
	}

	h.Name = cleanName
	h.Description = cleanDesc
	h.GoalType = goal
	h.TargetPerPeriod = safeTarget
	h.StartDate = start
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) Goal() HabitGoal {
	return HabitGoal{Type: h.GoalType, TargetPerPeriod: h.TargetPerPeriod}
}

func (h *Habit) IsArchived() bool { return h.ArchivedAt != nil }

// IsActiveOn reports whether the habit belongs on the dashboard for day.
func (h *Habit) IsActiveOn(day Date) bool {
	return !h.IsArchived() && !h.StartDate.After(day)
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) UpdateStreak(current, best int) {
	h.CurrentStreak = current
	h.BestStreak = best
	h.UpdatedAt = time.Now().UTC()
}
