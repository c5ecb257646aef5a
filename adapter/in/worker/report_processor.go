package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"report_server/core/service/report"
)

// ReportProcessor executes report generation jobs.
type ReportProcessor struct {
	reports *report.Service
	log     zerolog.Logger
}

func NewReportProcessor(reports *report.Service, log zerolog.Logger) *ReportProcessor {
	return &ReportProcessor{
		reports: reports,
		log:     log.With().Str("processor", "report").Logger(),
	}
}

// ProcessGenerate runs the pipeline for one report row. Errors are returned
// for logging only; the row's failed status is already recorded by the
// service, and the job is not redelivered.
func (p *ReportProcessor) ProcessGenerate(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ReportGeneratePayload](msg)
	if err != nil {
		return fmt.Errorf("parse report.generate payload: %w", err)
	}

	weekStart, err := time.Parse("2006-01-02", payload.WeekStart)
	if err != nil {
		return fmt.Errorf("parse week_start %q: %w", payload.WeekStart, err)
	}
	weekEnd, err := time.Parse("2006-01-02", payload.WeekEnd)
	if err != nil {
		return fmt.Errorf("parse week_end %q: %w", payload.WeekEnd, err)
	}

	started := time.Now()
	p.log.Info().
		Int64("report_id", payload.ReportID).
		Str("user_id", payload.UserID).
		Str("week_start", payload.WeekStart).
		Str("week_end", payload.WeekEnd).
		Msg("report generation started")

	if err := p.reports.ProcessReport(ctx, payload.ReportID, payload.UserID, weekStart, weekEnd); err != nil {
		p.log.Error().
			Err(err).
			Int64("report_id", payload.ReportID).
			Dur("elapsed", time.Since(started)).
			Msg("report generation failed")
		return err
	}

	p.log.Info().
		Int64("report_id", payload.ReportID).
		Dur("elapsed", time.Since(started)).
		Msg("report generation completed")
	return nil
}
