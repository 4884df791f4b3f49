package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// The in-memory repositories back the end-to-end tests and local runs
// without Postgres. They store copies so callers never share state.

var (
	_ domain.HabitRepository    = (*InMemoryHabitRepository)(nil)
	_ domain.HabitLogRepository = (*InMemoryHabitLogRepository)(nil)
	_ domain.UserRepository     = (*InMemoryUserRepository)(nil)
)

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit
	order map[string]int
	seq   int

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
		order: make(map[string]int),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
	r.seq++
	r.order[habit.ID] = r.seq
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	return r.list(func(h *domain.Habit) bool {
		return h.UserID == userID && (includeArchived || !h.IsArchived())
	}), nil
}

func (r *InMemoryHabitRepository) ListActive(ctx context.Context, userID string, day domain.Date) ([]*domain.Habit, error) {
	return r.list(func(h *domain.Habit) bool {
		return h.UserID == userID && h.IsActiveOn(day)
	}), nil
}

func (r *InMemoryHabitRepository) list(keep func(*domain.Habit) bool) []*domain.Habit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if keep(h) {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return r.order[habits[i].ID] < r.order[habits[j].ID]
	})

	return habits
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}

	// Streak columns are owned by UpdateStreaks.
	clone := *habit
	clone.CurrentStreak = stored.CurrentStreak
	clone.BestStreak = stored.BestStreak
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}

	habit.UpdateStreak(current, best)
	return nil
}

type InMemoryHabitLogRepository struct {
	store map[string]*domain.HabitLog

	mu sync.RWMutex
}

func NewInMemoryHabitLogRepository() *InMemoryHabitLogRepository {
	return &InMemoryHabitLogRepository{
		store: make(map[string]*domain.HabitLog),
	}
}

func (r *InMemoryHabitLogRepository) Create(ctx context.Context, l *domain.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if existing.HabitID == l.HabitID && existing.Date == l.Date {
			return domain.ErrLogExists
		}
	}

	clone := *l
	r.store[l.ID] = &clone
	return nil
}

func (r *InMemoryHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.store[id]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *InMemoryHabitLogRepository) ExistsForDate(ctx context.Context, habitID string, date domain.Date) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.store {
		if l.HabitID == habitID && l.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to *domain.Date) ([]*domain.HabitLog, error) {
	return r.list(func(l *domain.HabitLog) bool {
		if l.HabitID != habitID {
			return false
		}
		if from != nil && l.Date.Before(*from) {
			return false
		}
		return to == nil || !l.Date.After(*to)
	}), nil
}

func (r *InMemoryHabitLogRepository) ListByHabitIDs(ctx context.Context, userID string, habitIDs []string, until domain.Date) ([]*domain.HabitLog, error) {
	wanted := make(map[string]bool, len(habitIDs))
	for _, id := range habitIDs {
		wanted[id] = true
	}

	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && wanted[l.HabitID] && !l.Date.After(until)
	}), nil
}

func (r *InMemoryHabitLogRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.HabitLog, error) {
	return r.list(func(l *domain.HabitLog) bool {
		return l.UserID == userID && !l.Date.Before(from) && !l.Date.After(to)
	}), nil
}

func (r *InMemoryHabitLogRepository) list(keep func(*domain.HabitLog) bool) []*domain.HabitLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := []*domain.HabitLog{}
	for _, l := range r.store {
		if keep(l) {
			clone := *l
			logs = append(logs, &clone)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date.Before(logs[j].Date)
		}
		return logs[i].HabitID < logs[j].HabitID
	})

	return logs
}

func (r *InMemoryHabitLogRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.store[id]
	if !ok || l.UserID != userID {
		return domain.ErrLogNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	byID       map[string]*domain.User
	byEmail    map[string]string
	byUsername map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:       make(map[string]*domain.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyExists
	}
	if _, taken := r.byUsername[user.Username]; taken {
		return domain.ErrUsernameTaken
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if owner, taken := r.byUsername[user.Username]; taken && owner != user.ID {
		return domain.ErrUsernameTaken
	}

	delete(r.byUsername, current.Username)
	clone := *user
	r.byID[user.ID] = &clone
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}

	delete(r.byEmail, user.Email)
	delete(r.byUsername, user.Username)
	delete(r.byID, id)
	return nil
}
