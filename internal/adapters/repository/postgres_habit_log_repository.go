package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var _ domain.HabitLogRepository = (*PostgresHabitLogRepository)(nil)

var ErrLogReferenceMissing = errors.New("referenced habit or user does not exist")

const logColumns = `id, habit_id, user_id, date, value, created_at`

type PostgresHabitLogRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitLogRepository(db *sqlx.DB) *PostgresHabitLogRepository {
	return &PostgresHabitLogRepository{db: db}
}

func (r *PostgresHabitLogRepository) Create(ctx context.Context, l *domain.HabitLog) error {
	query := `
		INSERT INTO habit_logs (id, habit_id, user_id, date, value, created_at)
		VALUES (:id, :habit_id, :user_id, :date, :value, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return domain.ErrLogExists
		case pgForeignKeyViolation:
			return ErrLogReferenceMissing
		}
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

func (r *PostgresHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	var l domain.HabitLog
	query := `SELECT ` + logColumns + ` FROM habit_logs WHERE id = $1`

	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PostgresHabitLogRepository) ExistsForDate(ctx context.Context, habitID string, date domain.Date) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM habit_logs WHERE habit_id = $1 AND date = $2)`

	if err := r.db.GetContext(ctx, &exists, query, habitID, date); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to *domain.Date) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT ` + logColumns + ` FROM habit_logs
		WHERE habit_id = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date ASC`

	if err := r.db.SelectContext(ctx, &logs, query, habitID, optionalDate(from), optionalDate(to)); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) ListByHabitIDs(ctx context.Context, userID string, habitIDs []string, until domain.Date) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}
	if len(habitIDs) == 0 {
		return logs, nil
	}

	query := `
		SELECT ` + logColumns + ` FROM habit_logs
		WHERE user_id = $1
		  AND habit_id = ANY($2)
		  AND date <= $3
		ORDER BY habit_id, date ASC`

	if err := r.db.SelectContext(ctx, &logs, query, userID, pq.Array(habitIDs), until); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT ` + logColumns + ` FROM habit_logs
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	if err := r.db.SelectContext(ctx, &logs, query, userID, from, to); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `DELETE FROM habit_logs WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	return expectOneRow(res, domain.ErrLogNotFound)
}

func optionalDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return *d
}
