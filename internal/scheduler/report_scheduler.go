// Package scheduler triggers weekly report generation for every active user
// that wrote diary entries last week. It replaces an external cron: the loop
// fires every Monday at 00:00 KST.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"report_server/core/port/out"
	"report_server/core/service/report"
)

// KST is the reference timezone for week boundaries.
var KST = time.FixedZone("KST", 9*60*60)

// Scheduler enqueues one report job per eligible user each week.
type Scheduler struct {
	userRepo   out.UserRepository
	reportRepo out.ReportRepository
	reports    *report.Service
	log        zerolog.Logger

	now func() time.Time
}

func New(userRepo out.UserRepository, reportRepo out.ReportRepository, reports *report.Service, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		userRepo:   userRepo,
		reportRepo: reportRepo,
		reports:    reports,
		log:        log.With().Str("component", "scheduler").Logger(),
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled, firing at each Monday 00:00 KST.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := nextMonday(s.now().In(KST))
		s.log.Info().Time("next_run", next).Msg("scheduler waiting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		s.RunOnce(ctx)
	}
}

// RunOnce enqueues last week's reports for every user with entries. Safe to
// call repeatedly: per-user dedup happens in RequestReport.
func (s *Scheduler) RunOnce(ctx context.Context) {
	weekStart, weekEnd := report.PreviousWeek(s.now().In(KST))

	users, err := s.userRepo.ListActiveWithEntries(ctx, weekStart, weekEnd)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users with entries")
		return
	}

	s.log.Info().
		Int("users", len(users)).
		Str("week_start", weekStart.Format("2006-01-02")).
		Str("week_end", weekEnd.Format("2006-01-02")).
		Msg("weekly report run started")

	var requested, skipped, failed int
	for _, user := range users {
		exists, err := s.reportRepo.ExistsForWeek(ctx, user.UserID, weekStart, weekEnd)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.UserID).Msg("dedup check failed")
			failed++
			continue
		}
		if exists {
			skipped++
			continue
		}

		ws, we := weekStart, weekEnd
		if _, _, _, err := s.reports.RequestReport(ctx, user.UserID, &ws, &we); err != nil {
			s.log.Error().Err(err).Str("user_id", user.UserID).Msg("report request failed")
			failed++
			continue
		}
		requested++
	}

	s.log.Info().
		Int("requested", requested).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("weekly report run finished")
}

// nextMonday returns the next Monday 00:00 in t's location, strictly after t.
func nextMonday(t time.Time) time.Time {
	daysAhead := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	candidate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).
		AddDate(0, 0, daysAhead)
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
