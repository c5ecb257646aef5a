package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"report_server/core/domain"
	"report_server/core/port/out"
)

// EntryAdapter implements out.EntryRepository over the existing history
// table (read-only).
type EntryAdapter struct {
	db *sqlx.DB
}

func NewEntryAdapter(db *sqlx.DB) out.EntryRepository {
	return &EntryAdapter{db: db}
}

type entryRow struct {
	ID         int64          `db:"id"`
	UserID     string         `db:"user_id"`
	Content    string         `db:"content"`
	RecordDate time.Time      `db:"record_date"`
	Tags       pq.StringArray `db:"tags"`
}

func (r *entryRow) toDomain() *domain.DiaryEntry {
	return &domain.DiaryEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		Content:    r.Content,
		RecordDate: r.RecordDate,
		Tags:       []string(r.Tags),
	}
}

func (r *EntryAdapter) ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.DiaryEntry, error) {
	query := `
		SELECT id, user_id, content, record_date, tags
		FROM history
		WHERE user_id = $1 AND record_date BETWEEN $2 AND $3
		ORDER BY record_date ASC`

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]*domain.DiaryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toDomain()
	}
	return entries, nil
}
