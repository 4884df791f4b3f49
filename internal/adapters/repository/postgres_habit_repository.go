package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `id, user_id, name, description, goal_type, target_per_period,
	start_date, archived_at, current_streak, best_streak, created_at, updated_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, name, description, goal_type, target_per_period,
            start_date, archived_at, current_streak, best_streak, created_at, updated_at
        ) VALUES (
            :id, :user_id, :name, :description, :goal_type, :target_per_period,
            :start_date, :archived_at, :current_streak, :best_streak, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}

	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND ($2 OR archived_at IS NULL)
        ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &habits, query, userID, includeArchived); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) ListActive(ctx context.Context, userID string, day domain.Date) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}

	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND archived_at IS NULL AND start_date <= $2
        ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &habits, query, userID, day); err != nil {
		return nil, fmt.Errorf("active habits query error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name = :name, description = :description,
            goal_type = :goal_type, target_per_period = :target_per_period,
            start_date = :start_date, archived_at = :archived_at,
            updated_at = :updated_at
        WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, h)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	return expectOneRow(res, domain.ErrHabitNotFound)
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, best_streak = $2, updated_at = NOW()
        WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, current, best, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	return expectOneRow(res, domain.ErrHabitNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
