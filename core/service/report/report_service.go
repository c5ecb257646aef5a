package report

import (
	"context"
	"fmt"
	"time"

	"report_server/core/domain"
	"report_server/core/port/out"
	"report_server/pkg/apperr"
	"report_server/pkg/logger"
)

// Service drives the report pipeline around the pure Analyzer: request
// validation and job publication on the API side, and the full
// analyze-aggregate-persist-notify flow on the worker side.
type Service struct {
	userRepo   out.UserRepository
	entryRepo  out.EntryRepository
	reportRepo out.ReportRepository
	analyzer   *Analyzer
	sentiment  out.SentimentAnalyzer
	documents  out.DocumentStore
	notifier   out.ReportNotifier
	producer   out.JobProducer

	now func() time.Time
}

func NewService(
	userRepo out.UserRepository,
	entryRepo out.EntryRepository,
	reportRepo out.ReportRepository,
	analyzer *Analyzer,
	sentiment out.SentimentAnalyzer,
	documents out.DocumentStore,
	notifier out.ReportNotifier,
	producer out.JobProducer,
) *Service {
	return &Service{
		userRepo:   userRepo,
		entryRepo:  entryRepo,
		reportRepo: reportRepo,
		analyzer:   analyzer,
		sentiment:  sentiment,
		documents:  documents,
		notifier:   notifier,
		producer:   producer,
		now:        time.Now,
	}
}

// Analyzer exposes the pure aggregation engine, mainly for handlers that
// need week-range arithmetic.
func (s *Service) Analyzer() *Analyzer {
	return s.analyzer
}

// RequestReport validates a report request, inserts a processing placeholder
// row, and publishes a fire-and-forget generation job. The window defaults
// to the previous Monday..Sunday week when the caller supplies none.
// Deduplication happens here, before the job exists; the pipeline itself
// provides no locking.
func (s *Service) RequestReport(ctx context.Context, userID string, weekStart, weekEnd *time.Time) (int64, time.Time, time.Time, error) {
	if userID == "" {
		return 0, time.Time{}, time.Time{}, apperr.MissingField("user_id")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, time.Time{}, time.Time{}, apperr.DatabaseError("get user", err)
	}
	if user == nil || !user.IsActive() {
		return 0, time.Time{}, time.Time{}, apperr.NotFound("user")
	}

	var start, end time.Time
	if weekStart != nil && weekEnd != nil {
		start, end = *weekStart, *weekEnd
	} else {
		start, end = PreviousWeek(s.now())
	}
	if start.After(end) {
		return 0, time.Time{}, time.Time{}, apperr.ValidationFailed("start_date must not be after end_date")
	}

	entries, err := s.entryRepo.ListByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return 0, time.Time{}, time.Time{}, apperr.DatabaseError("list entries", err)
	}
	if len(entries) == 0 {
		return 0, time.Time{}, time.Time{}, apperr.BadRequest(
			fmt.Sprintf("분석 기간(%s ~ %s)에 일기가 없습니다", start.Format("2006-01-02"), end.Format("2006-01-02")))
	}

	exists, err := s.reportRepo.ExistsForWeek(ctx, userID, start, end)
	if err != nil {
		return 0, time.Time{}, time.Time{}, apperr.DatabaseError("check existing report", err)
	}
	if exists {
		return 0, time.Time{}, time.Time{}, apperr.AlreadyExists("report for this week")
	}

	reportID, err := s.reportRepo.Create(ctx, userID, user.DisplayName(), start, end)
	if err != nil {
		return 0, time.Time{}, time.Time{}, apperr.DatabaseError("create report", err)
	}

	if _, err := s.producer.PublishReportGenerate(ctx, reportID, userID, start, end); err != nil {
		// The job never made it onto the stream; fail the row so the user
		// can retry instead of waiting on a report that will not arrive.
		if markErr := s.reportRepo.MarkFailed(ctx, reportID, "failed to enqueue generation job"); markErr != nil {
			logger.WithError(markErr).Error("Failed to mark report %d failed", reportID)
		}
		return 0, time.Time{}, time.Time{}, apperr.ExternalError("job stream", err)
	}

	return reportID, start, end, nil
}

// ProcessReport runs the full generation pipeline for a previously created
// row. Called from the background worker; any failure marks the row failed.
// Document upload and email are best-effort and never fail the report.
func (s *Service) ProcessReport(ctx context.Context, reportID int64, userID string, weekStart, weekEnd time.Time) error {
	log := logger.WithFields(map[string]any{"report_id": reportID, "user_id": userID})

	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil && user == nil {
		err = fmt.Errorf("user %s not found", userID)
	}
	if err != nil {
		s.failReport(ctx, reportID, "사용자 조회에 실패했습니다")
		return fmt.Errorf("get user: %w", err)
	}

	entries, err := s.entryRepo.ListByUserAndDateRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		s.failReport(ctx, reportID, "일기 조회에 실패했습니다")
		return fmt.Errorf("list entries: %w", err)
	}

	analysis, err := s.sentiment.AnalyzeSentiment(ctx, entries, user.DisplayName())
	if err != nil {
		s.failReport(ctx, reportID, "감정 분석에 실패했습니다")
		return fmt.Errorf("analyze sentiment: %w", err)
	}

	result, err := s.analyzer.BuildReport(userID, user.DisplayName(), weekStart, weekEnd, entries, analysis)
	if err != nil {
		s.failReport(ctx, reportID, "리포트 생성에 실패했습니다")
		return fmt.Errorf("build report: %w", err)
	}

	// Secondary document copy. Best-effort: a miss leaves DocumentKey nil.
	var documentKey *string
	if s.documents != nil {
		if key, err := s.documents.Put(ctx, userID, result.ToDocument(), s.now().UTC()); err != nil {
			log.WithError(err).Warn("Document store upload failed, keeping DB row only")
		} else {
			documentKey = &key
		}
	}

	if err := s.reportRepo.Complete(ctx, reportID, result, documentKey); err != nil {
		return fmt.Errorf("complete report: %w", err)
	}

	if s.notifier != nil && user.Email != "" {
		if err := s.notifier.SendReportNotification(ctx, user.Email, result); err != nil {
			log.WithError(err).Warn("Report notification failed")
		}
	}

	log.Info("Weekly report completed (avg=%.1f, evaluation=%s, partial=%v)",
		result.AverageScore, result.Evaluation, result.HasPartialData)
	return nil
}

func (s *Service) failReport(ctx context.Context, reportID int64, message string) {
	if err := s.reportRepo.MarkFailed(ctx, reportID, message); err != nil {
		logger.WithError(err).Error("Failed to mark report %d failed", reportID)
	}
}

// GetReport returns a report row, enforcing the owner check the API layer
// relies on (ownership by query parameter, not authentication).
func (s *Service) GetReport(ctx context.Context, reportID int64, userID string) (*domain.WeeklyReport, error) {
	rpt, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, apperr.DatabaseError("get report", err)
	}
	if rpt == nil {
		return nil, apperr.NotFound("report")
	}
	if rpt.UserID != userID {
		return nil, apperr.Forbidden("다른 사용자의 리포트에 접근할 수 없습니다")
	}
	return rpt, nil
}

// ListReports returns a user's reports, newest first.
func (s *Service) ListReports(ctx context.Context, userID string, limit int) ([]*domain.WeeklyReport, error) {
	if limit <= 0 {
		limit = 10
	}
	reports, err := s.reportRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list reports", err)
	}
	return reports, nil
}

// LatestReportByNickname returns the most recent report for a nickname.
func (s *Service) LatestReportByNickname(ctx context.Context, nickname string) (*domain.WeeklyReport, error) {
	user, err := s.userRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return nil, apperr.DatabaseError("get user by nickname", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}

	rpt, err := s.reportRepo.GetLatestByNickname(ctx, nickname)
	if err != nil {
		return nil, apperr.DatabaseError("get latest report", err)
	}
	if rpt == nil {
		return nil, apperr.NotFound("report")
	}
	return rpt, nil
}

// GetReportDocument fetches the document-store copy of a report.
func (s *Service) GetReportDocument(ctx context.Context, reportID int64, userID string) (string, map[string]any, error) {
	rpt, err := s.GetReport(ctx, reportID, userID)
	if err != nil {
		return "", nil, err
	}
	if rpt.DocumentKey == nil {
		return "", nil, apperr.NotFound("report document")
	}
	if s.documents == nil {
		return "", nil, apperr.Internal("document store not configured")
	}

	doc, err := s.documents.Get(ctx, *rpt.DocumentKey)
	if err != nil {
		return "", nil, apperr.ExternalError("document store", err)
	}
	return *rpt.DocumentKey, doc, nil
}
