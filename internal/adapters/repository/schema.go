package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

//go:embed schema.sql
var schema string

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	usernameConstraint = "users_username_key"
)

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repository: migrate failed: %w", err)
	}
	return nil
}

// pgCode extracts the SQLSTATE from either driver's error type.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// pgConstraint names the constraint a violation came from, for either driver.
func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// userConflict maps a unique violation on users to its domain error.
func userConflict(err error) error {
	if pgCode(err) != pgUniqueViolation {
		return nil
	}
	if pgConstraint(err) == usernameConstraint {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailAlreadyExists
}
