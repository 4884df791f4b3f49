package workers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

type mockHabitRepo struct{ mock.Mock }

func (m *mockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	return m.Called(ctx, id, current, best).Error(0)
}

type mockLogRepo struct{ mock.Mock }

func (m *mockLogRepo) ListByHabitID(ctx context.Context, habitID string, from, to *domain.Date) ([]*domain.HabitLog, error) {
	args := m.Called(ctx, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HabitLog), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func logsOn(t *testing.T, habitID string, days ...string) []*domain.HabitLog {
	out := make([]*domain.HabitLog, 0, len(days))
	for _, d := range days {
		out = append(out, &domain.HabitLog{HabitID: habitID, Date: mustDate(t, d), Value: 1})
	}
	return out
}

type workerFixture struct {
	worker  *StreakWorker
	habits  *mockHabitRepo
	logs    *mockLogRepo
	users   *mockUserRepo
	metrics *metrics.Metrics
}

func newWorkerFixture(now time.Time, opts ...Option) *workerFixture {
	f := &workerFixture{
		habits:  new(mockHabitRepo),
		logs:    new(mockLogRepo),
		users:   new(mockUserRepo),
		metrics: metrics.New(),
	}
	opts = append([]Option{WithClock(func() time.Time { return now }), WithMetrics(f.metrics)}, opts...)
	f.worker = NewStreakWorker(f.habits, f.logs, f.users, opts...)
	return f
}

func (f *workerFixture) scrape(t *testing.T) string {
	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	t.Run("Stores the recomputed daily streak", func(t *testing.T) {
		f := newWorkerFixture(now)
		today := mustDate(t, "2024-01-10")

		f.habits.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", UserID: "u1", GoalType: domain.GoalDaily, TargetPerPeriod: 1}, nil)
		f.users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Timezone: "UTC"}, nil)
		f.logs.On("ListByHabitID", ctx, "h1", (*domain.Date)(nil), &today).
			Return(logsOn(t, "h1", "2024-01-05", "2024-01-08", "2024-01-09", "2024-01-10"), nil)
		f.habits.On("UpdateStreaks", ctx, "h1", 3, 3).Return(nil)

		f.worker.processJob(ctx, StreakJob{HabitID: "h1"})

		f.habits.AssertExpectations(t)
		assert.Contains(t, f.scrape(t), `streak_jobs_total{result="updated"} 1`)
	})

	t.Run("Uses the owner's timezone for today", func(t *testing.T) {
		// 15:00 UTC is already the 11th in Auckland.
		f := newWorkerFixture(now)
		today := mustDate(t, "2024-01-11")

		f.habits.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", UserID: "u1", GoalType: domain.GoalDaily}, nil)
		f.users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Timezone: "Pacific/Auckland"}, nil)
		f.logs.On("ListByHabitID", ctx, "h1", (*domain.Date)(nil), &today).
			Return(logsOn(t, "h1", "2024-01-10", "2024-01-11"), nil)
		f.habits.On("UpdateStreaks", ctx, "h1", 2, 2).Return(nil)

		f.worker.processJob(ctx, StreakJob{HabitID: "h1"})

		f.habits.AssertExpectations(t)
	})

	t.Run("Skips the write when nothing changed", func(t *testing.T) {
		f := newWorkerFixture(now)

		f.habits.On("GetByID", ctx, "h1").Return(&domain.Habit{
			ID: "h1", UserID: "u1", GoalType: domain.GoalXPerWeek, TargetPerPeriod: 2,
			CurrentStreak: 1, BestStreak: 1,
		}, nil)
		f.users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1"}, nil)
		f.logs.On("ListByHabitID", ctx, "h1", mock.Anything, mock.Anything).
			Return(logsOn(t, "h1", "2024-01-01", "2024-01-02"), nil)

		f.worker.processJob(ctx, StreakJob{HabitID: "h1"})

		f.habits.AssertNotCalled(t, "UpdateStreaks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Contains(t, f.scrape(t), `streak_jobs_total{result="unchanged"} 1`)
	})

	t.Run("Missing owner falls back to the default zone", func(t *testing.T) {
		f := newWorkerFixture(now)
		today := mustDate(t, "2024-01-10")

		f.habits.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", UserID: "u1", GoalType: domain.GoalDaily, CurrentStreak: 4, BestStreak: 9}, nil)
		f.users.On("GetByID", ctx, "u1").Return(nil, domain.ErrUserNotFound)
		f.logs.On("ListByHabitID", ctx, "h1", (*domain.Date)(nil), &today).Return([]*domain.HabitLog{}, nil)
		f.habits.On("UpdateStreaks", ctx, "h1", 0, 0).Return(nil)

		f.worker.processJob(ctx, StreakJob{HabitID: "h1"})

		f.habits.AssertExpectations(t)
	})

	t.Run("Repository failures are counted", func(t *testing.T) {
		f := newWorkerFixture(now)
		f.habits.On("GetByID", ctx, "h1").Return(nil, errors.New("db down"))

		f.worker.processJob(ctx, StreakJob{HabitID: "h1"})

		f.logs.AssertNotCalled(t, "ListByHabitID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Contains(t, f.scrape(t), `streak_jobs_total{result="failed"} 1`)
	})
}

func TestStreakWorker_Enqueue(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	t.Run("Drops jobs when the queue is full", func(t *testing.T) {
		f := newWorkerFixture(now, WithQueueSize(1))

		f.worker.Enqueue("h1")
		f.worker.Enqueue("h2")

		assert.Len(t, f.worker.jobs, 1)
		assert.Contains(t, f.scrape(t), "streak_jobs_dropped_total 1")
	})

	t.Run("Started worker drains the queue and stops with the context", func(t *testing.T) {
		f := newWorkerFixture(now)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		f.habits.On("GetByID", mock.Anything, "h1").Return(&domain.Habit{ID: "h1", UserID: "u1", GoalType: domain.GoalDaily}, nil)
		f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
		f.logs.On("ListByHabitID", mock.Anything, "h1", mock.Anything, mock.Anything).Return(logsOn(t, "h1", "2024-01-10"), nil)
		f.habits.On("UpdateStreaks", mock.Anything, "h1", 1, 1).Return(nil).Run(func(mock.Arguments) { close(done) })

		f.worker.Start(ctx)
		f.worker.Enqueue("h1")

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job was not processed")
		}

		cancel()
		f.worker.Wait()
	})
}
