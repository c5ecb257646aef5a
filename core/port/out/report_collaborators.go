package out

import (
	"context"
	"time"

	"report_server/core/domain"
)

// SentimentAnalyzer produces per-day scores and themes for a week of diary
// entries. Implementations own prompt construction, timeouts, and response
// repair; callers treat the result as opaque input to aggregation.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, entries []*domain.DiaryEntry, nickname string) (*domain.SentimentAnalysis, error)
}

// DocumentStore holds the full report document as a secondary, best-effort
// copy. A failed Put must not block the primary persisted row.
type DocumentStore interface {
	// Put stores the document and returns its storage key.
	Put(ctx context.Context, userID string, document map[string]any, createdAt time.Time) (string, error)
	Get(ctx context.Context, key string) (map[string]any, error)
	Delete(ctx context.Context, key string) error
}

// ReportNotifier delivers a completed report to the user.
type ReportNotifier interface {
	SendReportNotification(ctx context.Context, recipient string, report *domain.ReportResult) error
}

// JobProducer enqueues fire-and-forget background jobs.
type JobProducer interface {
	PublishReportGenerate(ctx context.Context, reportID int64, userID string, weekStart, weekEnd time.Time) (string, error)
}
