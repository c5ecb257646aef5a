package report

import (
	"fmt"
	"time"

	"report_server/core/domain"
	"report_server/pkg/apperr"
)

// maxContentRunes caps diary content carried into daily analysis.
const maxContentRunes = 100

// Analyzer is the pure weekly-report aggregation engine. It holds no mutable
// state, performs no I/O, and is safe for concurrent use; construct once and
// share, or construct per call.
type Analyzer struct {
	classifier *TagClassifier
}

// NewAnalyzer creates an analyzer with the given tag classifier.
func NewAnalyzer(classifier *TagClassifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// AverageScore returns the mean daily score rounded to one decimal, or 0.0
// for an empty score set (degenerate data, not an error).
func (a *Analyzer) AverageScore(scores []domain.DailyScore) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	var total float64
	for _, s := range scores {
		total += s.Score
	}
	return round1(total / float64(len(scores)))
}

// EvaluationFor maps an average score to the weekly evaluation label.
// Exactly 5.0 is positive.
func (a *Analyzer) EvaluationFor(averageScore float64) domain.Evaluation {
	if averageScore >= scoreThreshold {
		return domain.EvaluationPositive
	}
	return domain.EvaluationNegative
}

// BuildReport aggregates a week of diary entries and their sentiment
// analysis into a ReportResult. Idempotent: identical inputs produce an
// identical result. Degenerate inputs (no entries, no scores) produce a
// well-defined report; only structurally invalid input is an error.
//
// HasPartialData compares the raw entry count against calendar days in the
// window, matching the upstream data model's one-entry-per-day assumption.
func (a *Analyzer) BuildReport(
	userID, nickname string,
	weekStart, weekEnd time.Time,
	entries []*domain.DiaryEntry,
	analysis *domain.SentimentAnalysis,
) (*domain.ReportResult, error) {
	if weekStart.After(weekEnd) {
		return nil, apperr.ValidationFailed("week_start must not be after week_end")
	}
	if analysis == nil {
		return nil, apperr.MissingField("analysis")
	}
	for _, s := range analysis.DailyScores {
		if _, err := time.Parse("2006-01-02", s.Date); err != nil {
			return nil, apperr.InvalidInput("daily_scores.date", fmt.Sprintf("%q is not an ISO date", s.Date))
		}
	}

	averageScore := a.AverageScore(analysis.DailyScores)
	evaluation := a.EvaluationFor(averageScore)

	dailyAnalysis := a.buildDailyAnalysis(entries, analysis.DailyScores)
	patterns := a.MinePatterns(entries, analysis.DailyScores)
	feedback := a.GenerateFeedback(analysis.DailyScores, patterns, evaluation)

	// Collaborator recommendations go last, verbatim and in order.
	feedback = append(feedback, analysis.Recommendations...)

	daysInWeek := int(weekEnd.Sub(weekStart).Hours()/24) + 1
	hasPartialData := len(entries) < daysInWeek
	if hasPartialData {
		warning := fmt.Sprintf("⚠️ 이번 주 %d일 중 %d일의 일기만 분석되었습니다.", daysInWeek, len(entries))
		feedback = append([]string{warning}, feedback...)
	}

	return &domain.ReportResult{
		UserID:         userID,
		Nickname:       nickname,
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		AverageScore:   averageScore,
		Evaluation:     evaluation,
		DailyAnalysis:  dailyAnalysis,
		Patterns:       patterns,
		Feedback:       feedback,
		HasPartialData: hasPartialData,
	}, nil
}

// buildDailyAnalysis emits one record per daily score, in score order,
// joining each day's diary content by ISO date. Days without an entry get
// empty content.
func (a *Analyzer) buildDailyAnalysis(entries []*domain.DiaryEntry, scores []domain.DailyScore) []domain.DailyAnalysis {
	contentByDate := make(map[string]string, len(entries))
	for _, entry := range entries {
		contentByDate[entry.RecordDateISO()] = entry.Content
	}

	results := make([]domain.DailyAnalysis, 0, len(scores))
	for _, score := range scores {
		results = append(results, domain.DailyAnalysis{
			Date:         score.Date,
			Score:        score.Score,
			Sentiment:    score.Sentiment,
			DiaryContent: truncateContent(contentByDate[score.Date]),
			KeyThemes:    score.KeyThemes,
		})
	}
	return results
}

// truncateContent caps content at 100 runes with an ellipsis marker.
// Rune-based: the corpus is Korean and byte truncation would split Hangul.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentRunes {
		return content
	}
	return string(runes[:maxContentRunes]) + "..."
}
