package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidLog     = errors.New("invalid habit log data")
	ErrLogNotFound    = errors.New("habit log not found")
	ErrLogExists      = errors.New("log already exists for this date")
	ErrNegativeValue  = errors.New("value cannot be negative")
	ErrLogDateMissing = errors.New("log date is required")
)

// HabitLog records that a habit was done on a calendar day.
type HabitLog struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Date  Date `json:"date" db:"date"`
	Value int  `json:"value" db:"value"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewHabitLog(habitID, userID string, date Date, value int) *HabitLog {
	return &HabitLog{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		UserID:    userID,
		Date:      date,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
}

func (l *HabitLog) Validate() error {
	if strings.TrimSpace(l.HabitID) == "" || strings.TrimSpace(l.UserID) == "" {
		return ErrInvalidLog
	}
	if l.Value < 0 {
		return ErrNegativeValue
	}
	if l.Date.IsZero() {
		return ErrLogDateMissing
	}
	return nil
}

// LogDatesByHabit groups logs into one LogDateSet per habit id.
func LogDatesByHabit(logs []*HabitLog) map[string]LogDateSet {
	grouped := make(map[string][]Date)
	for _, l := range logs {
		grouped[l.HabitID] = append(grouped[l.HabitID], l.Date)
	}

	sets := make(map[string]LogDateSet, len(grouped))
	for id, dates := range grouped {
		sets[id] = NewLogDateSet(dates...)
	}
	return sets
}
