package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"report_server/core/domain"
	"report_server/core/port/out"
)

// ReportAdapter implements out.ReportRepository over the weekly_reports
// table, the one table this service owns.
type ReportAdapter struct {
	db *sqlx.DB
}

func NewReportAdapter(db *sqlx.DB) out.ReportRepository {
	return &ReportAdapter{db: db}
}

type reportRow struct {
	ID            int64          `db:"id"`
	UserID        string         `db:"user_id"`
	Nickname      string         `db:"nickname"`
	WeekStart     time.Time      `db:"week_start"`
	WeekEnd       time.Time      `db:"week_end"`
	AverageScore  float64        `db:"average_score"`
	Evaluation    string         `db:"evaluation"`
	DailyAnalysis []byte         `db:"daily_analysis"`
	Patterns      []byte         `db:"patterns"`
	Feedback      []byte         `db:"feedback"`
	HasPartial    bool           `db:"has_partial_data"`
	Status        string         `db:"status"`
	DocumentKey   sql.NullString `db:"document_key"`
	ErrorMessage  sql.NullString `db:"error_message"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r *reportRow) toDomain() (*domain.WeeklyReport, error) {
	report := &domain.WeeklyReport{
		ID:             r.ID,
		UserID:         r.UserID,
		Nickname:       r.Nickname,
		WeekStart:      r.WeekStart,
		WeekEnd:        r.WeekEnd,
		AverageScore:   r.AverageScore,
		Evaluation:     domain.Evaluation(r.Evaluation),
		HasPartialData: r.HasPartial,
		Status:         domain.ReportStatus(r.Status),
		CreatedAt:      r.CreatedAt,
	}
	if r.DocumentKey.Valid {
		key := r.DocumentKey.String
		report.DocumentKey = &key
	}
	if len(r.DailyAnalysis) > 0 {
		if err := json.Unmarshal(r.DailyAnalysis, &report.DailyAnalysis); err != nil {
			return nil, fmt.Errorf("decode daily_analysis: %w", err)
		}
	}
	if len(r.Patterns) > 0 {
		if err := json.Unmarshal(r.Patterns, &report.Patterns); err != nil {
			return nil, fmt.Errorf("decode patterns: %w", err)
		}
	}
	if len(r.Feedback) > 0 {
		if err := json.Unmarshal(r.Feedback, &report.Feedback); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
	}
	return report, nil
}

const reportColumns = `
	id, user_id, nickname, week_start, week_end, average_score, evaluation,
	daily_analysis, patterns, feedback, has_partial_data, status,
	document_key, error_message, created_at`

func (r *ReportAdapter) Create(ctx context.Context, userID, nickname string, weekStart, weekEnd time.Time) (int64, error) {
	query := `
		INSERT INTO weekly_reports
			(user_id, nickname, week_start, week_end, average_score, evaluation,
			 daily_analysis, patterns, feedback, has_partial_data, status, created_at)
		VALUES ($1, $2, $3, $4, 0, 'negative', '[]', '[]', '[]', false, 'processing', NOW())
		RETURNING id`

	var id int64
	if err := r.db.GetContext(ctx, &id, query, userID, nickname, weekStart, weekEnd); err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	return id, nil
}

func (r *ReportAdapter) Complete(ctx context.Context, reportID int64, result *domain.ReportResult, documentKey *string) error {
	dailyJSON, err := json.Marshal(result.DailyAnalysis)
	if err != nil {
		return fmt.Errorf("encode daily_analysis: %w", err)
	}
	patternsJSON, err := json.Marshal(result.Patterns)
	if err != nil {
		return fmt.Errorf("encode patterns: %w", err)
	}
	feedbackJSON, err := json.Marshal(result.Feedback)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	query := `
		UPDATE weekly_reports
		SET average_score = $2, evaluation = $3, daily_analysis = $4,
		    patterns = $5, feedback = $6, has_partial_data = $7,
		    document_key = $8, status = 'completed', error_message = NULL
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, reportID,
		result.AverageScore, string(result.Evaluation),
		dailyJSON, patternsJSON, feedbackJSON,
		result.HasPartialData, documentKey)
	if err != nil {
		return fmt.Errorf("complete report: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportAdapter) MarkFailed(ctx context.Context, reportID int64, message string) error {
	query := `
		UPDATE weekly_reports
		SET status = 'failed', error_message = $2
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, reportID, message)
	if err != nil {
		return fmt.Errorf("mark report failed: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportAdapter) GetByID(ctx context.Context, reportID int64) (*domain.WeeklyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM weekly_reports WHERE id = $1`

	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, reportID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return row.toDomain()
}

func (r *ReportAdapter) GetLatestByNickname(ctx context.Context, nickname string) (*domain.WeeklyReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM weekly_reports
		WHERE nickname = $1 AND status = 'completed'
		ORDER BY week_start DESC, created_at DESC
		LIMIT 1`

	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, nickname); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest report by nickname: %w", err)
	}
	return row.toDomain()
}

func (r *ReportAdapter) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WeeklyReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM weekly_reports
		WHERE user_id = $1
		ORDER BY week_start DESC, created_at DESC
		LIMIT $2`

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]*domain.WeeklyReport, len(rows))
	for i := range rows {
		report, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		reports[i] = report
	}
	return reports, nil
}

func (r *ReportAdapter) ExistsForWeek(ctx context.Context, userID string, weekStart, weekEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM weekly_reports
			WHERE user_id = $1 AND week_start = $2 AND week_end = $3
			  AND status IN ('processing', 'completed')
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, weekStart, weekEnd); err != nil {
		return false, fmt.Errorf("check report exists: %w", err)
	}
	return exists, nil
}
