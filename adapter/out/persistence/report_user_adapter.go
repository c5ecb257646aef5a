// Package persistence implements the Postgres adapters for the report
// service's outbound repository ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"report_server/core/domain"
	"report_server/core/port/out"
)

// UserAdapter implements out.UserRepository over the existing users table.
// Read-only: account lifecycle belongs to the auth stack.
type UserAdapter struct {
	db *sqlx.DB
}

func NewUserAdapter(db *sqlx.DB) out.UserRepository {
	return &UserAdapter{db: db}
}

func (r *UserAdapter) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, email, nickname, status, created_at, updated_at, deleted_at
		FROM users
		WHERE user_id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserAdapter) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	query := `
		SELECT user_id, email, nickname, status, created_at, updated_at, deleted_at
		FROM users
		WHERE nickname = $1 AND deleted_at IS NULL`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, nickname); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by nickname: %w", err)
	}
	return &user, nil
}

func (r *UserAdapter) ListActiveWithEntries(ctx context.Context, start, end time.Time) ([]*domain.User, error) {
	query := `
		SELECT DISTINCT u.user_id, u.email, u.nickname, u.status,
		       u.created_at, u.updated_at, u.deleted_at
		FROM users u
		JOIN history h ON h.user_id = u.user_id
		WHERE u.deleted_at IS NULL
		  AND h.record_date BETWEEN $1 AND $2
		ORDER BY u.user_id`

	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, query, start, end); err != nil {
		return nil, fmt.Errorf("list active users with entries: %w", err)
	}
	return users, nil
}
