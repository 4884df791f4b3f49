package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

const DefaultQueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type LogRepository interface {
	ListByHabitID(ctx context.Context, habitID string, from, to *domain.Date) ([]*domain.HabitLog, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes a habit's streak snapshot in the background after
// its logs or goal change. The snapshot is a cache: the dashboard always
// recomputes from logs.
type StreakWorker struct {
	habitRepo HabitRepository
	logRepo   LogRepository
	userRepo  UserRepository
	fallback  *time.Location
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	queueSize int
	jobs      chan StreakJob
	wg        sync.WaitGroup
}

func NewStreakWorker(hRepo HabitRepository, lRepo LogRepository, uRepo UserRepository, opts ...Option) *StreakWorker {
	w := &StreakWorker{
		habitRepo: hRepo,
		logRepo:   lRepo,
		userRepo:  uRepo,
		fallback:  time.UTC,
		logger:    zap.NewNop(),
		now:       time.Now,
		queueSize: DefaultQueueSize,
	}

	for _, opt := range opts {
		opt(w)
	}
	w.jobs = make(chan StreakJob, w.queueSize)

	return w
}

type Option func(w *StreakWorker)

func WithQueueSize(n int) Option {
	return func(w *StreakWorker) {
		if n > 0 {
			w.queueSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *StreakWorker) {
		if l != nil {
			w.logger = l.Named("streak_worker")
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *StreakWorker) { w.metrics = m }
}

// WithFallbackLocation sets the zone used for users with no valid timezone.
func WithFallbackLocation(loc *time.Location) Option {
	return func(w *StreakWorker) {
		if loc != nil {
			w.fallback = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *StreakWorker) { w.now = now }
}

func (w *StreakWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("streak worker started", zap.Int("queue_size", cap(w.jobs)))
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("streak worker shutting down", zap.Int("pending", len(w.jobs)))
				return
			}
		}
	}()
}

// Wait blocks until the goroutine started by Start has returned.
func (w *StreakWorker) Wait() {
	w.wg.Wait()
}

// Enqueue never blocks. When the queue is full the job is dropped; the next
// change to the habit schedules it again.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.logger.Warn("streak queue full, dropping job", zap.String("habit_id", habitID))
		if w.metrics != nil {
			w.metrics.StreakJobsDropped.Inc()
		}
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	log := w.logger.With(zap.String("habit_id", job.HabitID))

	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Error("fetching habit", zap.Error(err))
		w.observe("failed")
		return
	}

	user, err := w.userRepo.GetByID(ctx, habit.UserID)
	if err != nil {
		log.Warn("fetching owner, using fallback timezone", zap.Error(err))
		user = nil
	}

	today := domain.DateOf(w.now().In(user.Location(w.fallback)))

	logs, err := w.logRepo.ListByHabitID(ctx, habit.ID, nil, &today)
	if err != nil {
		log.Error("fetching logs", zap.Error(err))
		w.observe("failed")
		return
	}

	dates := make([]domain.Date, 0, len(logs))
	for _, l := range logs {
		dates = append(dates, l.Date)
	}

	result := streak.Compute(habit.Goal(), domain.NewLogDateSet(dates...), today)

	if habit.CurrentStreak == result.CurrentStreak && habit.BestStreak == result.BestStreak {
		w.observe("unchanged")
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, result.CurrentStreak, result.BestStreak); err != nil {
		log.Error("storing streaks", zap.Error(err))
		w.observe("failed")
		return
	}

	log.Debug("streaks updated",
		zap.Int("current", result.CurrentStreak),
		zap.Int("best", result.BestStreak),
	)
	w.observe("updated")
}

func (w *StreakWorker) observe(result string) {
	if w.metrics != nil {
		w.metrics.StreakJobs.WithLabelValues(result).Inc()
	}
}
