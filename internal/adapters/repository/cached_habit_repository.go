package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository caches each user's habit list in Redis. Writes
// invalidate the owner's entries. Redis failures degrade to the wrapped
// repository.
type CachedHabitRepository struct {
	next   domain.HabitRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedHabitRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedHabitRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("habit_cache"),
	}
}

func (r *CachedHabitRepository) cacheKey(userID string, includeArchived bool) string {
	if includeArchived {
		return fmt.Sprintf("habits:%s:all", userID)
	}
	return fmt.Sprintf("habits:%s:visible", userID)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	keys := []string{r.cacheKey(userID, false), r.cacheKey(userID, true)}
	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	key := r.cacheKey(userID, includeArchived)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			return habits, nil
		}

		r.logger.Warn("corrupted entry, cleaning up key", zap.String("key", key))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("read error", zap.Error(err))
	}

	habits, err := r.next.ListByUserID(ctx, userID, includeArchived)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Warn("set error", zap.Error(setErr))
		}
	}

	return habits, nil
}

// ListActive depends on the caller's day, so it always goes to the wrapped repository.
func (r *CachedHabitRepository) ListActive(ctx context.Context, userID string, day domain.Date) ([]*domain.Habit, error) {
	return r.next.ListActive(ctx, userID, day)
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.UpdateStreaks(ctx, id, current, best)
}
