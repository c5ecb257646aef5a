// Package out defines the outbound ports of the report service.
package out

import (
	"context"
	"time"

	"report_server/core/domain"
)

// UserRepository reads the existing users table.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
	// ListActiveWithEntries returns active users that wrote at least one
	// diary entry inside the window. Used by the weekly scheduler.
	ListActiveWithEntries(ctx context.Context, start, end time.Time) ([]*domain.User, error)
}

// EntryRepository reads the existing diary history table.
type EntryRepository interface {
	// ListByUserAndDateRange returns the user's entries with record_date in
	// [start, end], ordered by record_date ascending.
	ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.DiaryEntry, error)
}

// ReportRepository owns the weekly_reports table.
type ReportRepository interface {
	// Create inserts a processing-status placeholder row and returns its ID.
	Create(ctx context.Context, userID, nickname string, weekStart, weekEnd time.Time) (int64, error)
	// Complete fills in the computed result and marks the row completed.
	Complete(ctx context.Context, reportID int64, result *domain.ReportResult, documentKey *string) error
	// MarkFailed records a failure message on the row.
	MarkFailed(ctx context.Context, reportID int64, message string) error

	GetByID(ctx context.Context, reportID int64) (*domain.WeeklyReport, error)
	GetLatestByNickname(ctx context.Context, nickname string) (*domain.WeeklyReport, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WeeklyReport, error)
	ExistsForWeek(ctx context.Context, userID string, weekStart, weekEnd time.Time) (bool, error)
}
