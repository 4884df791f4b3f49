package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListActive(ctx context.Context, userID string, day domain.Date) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	return m.Called(ctx, id, current, best).Error(0)
}

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Create(ctx context.Context, log *domain.HabitLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockLogRepo) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HabitLog), args.Error(1)
}

func (m *MockLogRepo) ExistsForDate(ctx context.Context, habitID string, d domain.Date) (bool, error) {
	args := m.Called(ctx, habitID, d)
	return args.Bool(0), args.Error(1)
}

func (m *MockLogRepo) ListByHabitID(ctx context.Context, habitID string, from, to *domain.Date) ([]*domain.HabitLog, error) {
	args := m.Called(ctx, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HabitLog), args.Error(1)
}

func (m *MockLogRepo) ListByHabitIDs(ctx context.Context, userID string, habitIDs []string, until domain.Date) ([]*domain.HabitLog, error) {
	args := m.Called(ctx, userID, habitIDs, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HabitLog), args.Error(1)
}

func (m *MockLogRepo) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.HabitLog, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HabitLog), args.Error(1)
}

func (m *MockLogRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// recordingEnqueuer stands in for the streak worker.
type recordingEnqueuer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingEnqueuer) Enqueue(habitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, habitID)
}

func (r *recordingEnqueuer) Enqueued() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}
