package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"report_server/core/domain"
	"report_server/pkg/apperr"
)

func day(isoDate string) time.Time {
	d, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAverageScore(t *testing.T) {
	a := testAnalyzer()

	tests := []struct {
		name   string
		scores []domain.DailyScore
		want   float64
	}{
		{
			name: "rounds to one decimal",
			scores: []domain.DailyScore{
				score("2025-01-13", 7.5),
				score("2025-01-14", 6.0),
				score("2025-01-15", 8.0),
			},
			// 21.5 / 3 = 7.1666... rounds to 7.2
			want: 7.2,
		},
		{
			name:   "single day",
			scores: []domain.DailyScore{score("2025-01-13", 4.25)},
			want:   4.3,
		},
		{
			name:   "empty is zero",
			scores: nil,
			want:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.AverageScore(tt.scores); got != tt.want {
				t.Errorf("AverageScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluationForBoundary(t *testing.T) {
	a := testAnalyzer()

	if got := a.EvaluationFor(5.0); got != domain.EvaluationPositive {
		t.Errorf("EvaluationFor(5.0) = %q, want positive", got)
	}
	if got := a.EvaluationFor(4.9); got != domain.EvaluationNegative {
		t.Errorf("EvaluationFor(4.9) = %q, want negative", got)
	}
	if got := a.EvaluationFor(0.0); got != domain.EvaluationNegative {
		t.Errorf("EvaluationFor(0.0) = %q, want negative", got)
	}
}

func TestBuildReportFullWeek(t *testing.T) {
	a := testAnalyzer()

	entries := []*domain.DiaryEntry{
		entry("2025-01-13", "운동", "맑음"),
		entry("2025-01-14", "독서"),
		entry("2025-01-15", "친구", "맑음"),
		entry("2025-01-16", "스트레스", "흐림"),
		entry("2025-01-17", "일상"),
	}
	analysis := &domain.SentimentAnalysis{
		DailyScores: []domain.DailyScore{
			score("2025-01-13", 7.5),
			score("2025-01-14", 6.0),
			score("2025-01-15", 8.0),
			score("2025-01-16", 4.0),
			score("2025-01-17", 5.5),
		},
		Recommendations: []string{"맑은 날 야외 활동을 늘려보세요."},
	}

	result, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"), entries, analysis)
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}

	// (7.5+6.0+8.0+4.0+5.5)/5 = 6.2
	if result.AverageScore != 6.2 {
		t.Errorf("AverageScore = %v, want 6.2", result.AverageScore)
	}
	if result.Evaluation != domain.EvaluationPositive {
		t.Errorf("Evaluation = %q, want positive", result.Evaluation)
	}
	if len(result.DailyAnalysis) != 5 {
		t.Fatalf("got %d daily analyses, want 5", len(result.DailyAnalysis))
	}

	var sunny *domain.Pattern
	for i := range result.Patterns {
		if result.Patterns[i].Value == "맑음" {
			sunny = &result.Patterns[i]
		}
	}
	if sunny == nil {
		t.Fatalf("no pattern for 맑음 in %v", result.Patterns)
	}
	if sunny.AverageScore != 7.8 {
		t.Errorf("맑음 average = %v, want 7.8", sunny.AverageScore)
	}
	if sunny.Correlation != domain.EvaluationPositive {
		t.Errorf("맑음 correlation = %q, want positive", sunny.Correlation)
	}

	// Five entries across a 7-day window: partial data, warning first.
	if !result.HasPartialData {
		t.Error("HasPartialData = false, want true")
	}
	if len(result.Feedback) == 0 || result.Feedback[0] != "⚠️ 이번 주 7일 중 5일의 일기만 분석되었습니다." {
		t.Errorf("first feedback = %q, want partial-data warning", result.Feedback[0])
	}
	last := result.Feedback[len(result.Feedback)-1]
	if last != "맑은 날 야외 활동을 늘려보세요." {
		t.Errorf("last feedback = %q, want recommendation appended verbatim", last)
	}
}

func TestBuildReportIdempotent(t *testing.T) {
	a := testAnalyzer()

	entries := []*domain.DiaryEntry{
		entry("2025-01-13", "운동", "맑음"),
		entry("2025-01-14", "야근"),
	}
	analysis := &domain.SentimentAnalysis{
		DailyScores: []domain.DailyScore{
			score("2025-01-13", 8.0),
			score("2025-01-14", 3.0),
		},
	}

	first, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"), entries, analysis)
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		next, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"), entries, analysis)
		if err != nil {
			t.Fatalf("BuildReport() run %d error: %v", i, err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs from first result", i)
		}
	}
}

func TestBuildReportEmptyWeek(t *testing.T) {
	a := testAnalyzer()

	result, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"),
		nil, &domain.SentimentAnalysis{})
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}

	if result.AverageScore != 0.0 {
		t.Errorf("AverageScore = %v, want 0.0", result.AverageScore)
	}
	if result.Evaluation != domain.EvaluationNegative {
		t.Errorf("Evaluation = %q, want negative", result.Evaluation)
	}
	if len(result.DailyAnalysis) != 0 {
		t.Errorf("DailyAnalysis = %v, want empty", result.DailyAnalysis)
	}
	if len(result.Patterns) != 0 {
		t.Errorf("Patterns = %v, want empty", result.Patterns)
	}
	if !result.HasPartialData {
		t.Error("HasPartialData = false, want true")
	}
	// Warning, then the negative closing line; nothing else.
	if len(result.Feedback) != 2 {
		t.Fatalf("got %d feedback sentences, want 2: %v", len(result.Feedback), result.Feedback)
	}
	if result.Feedback[0] != "⚠️ 이번 주 7일 중 0일의 일기만 분석되었습니다." {
		t.Errorf("first feedback = %q", result.Feedback[0])
	}
}

func TestBuildReportCompleteWeekHasNoWarning(t *testing.T) {
	a := testAnalyzer()

	entries := make([]*domain.DiaryEntry, 0, 7)
	scores := make([]domain.DailyScore, 0, 7)
	for i := 0; i < 7; i++ {
		date := day("2025-01-13").AddDate(0, 0, i).Format("2006-01-02")
		entries = append(entries, entry(date, "일상"))
		scores = append(scores, score(date, 6.0))
	}

	result, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"),
		entries, &domain.SentimentAnalysis{DailyScores: scores})
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}

	if result.HasPartialData {
		t.Error("HasPartialData = true for a full week")
	}
	for _, sentence := range result.Feedback {
		if strings.HasPrefix(sentence, "⚠️") {
			t.Errorf("unexpected warning in feedback: %q", sentence)
		}
	}
}

func TestBuildReportDailyAnalysisJoinsContent(t *testing.T) {
	a := testAnalyzer()

	long := strings.Repeat("가", 150)
	e := entry("2025-01-13", "일상")
	e.Content = long

	analysis := &domain.SentimentAnalysis{
		DailyScores: []domain.DailyScore{
			score("2025-01-13", 6.0),
			score("2025-01-14", 5.0), // no entry this day
		},
	}

	result, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"),
		[]*domain.DiaryEntry{e}, analysis)
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}

	if len(result.DailyAnalysis) != 2 {
		t.Fatalf("got %d daily analyses, want 2", len(result.DailyAnalysis))
	}
	got := result.DailyAnalysis[0].DiaryContent
	if want := strings.Repeat("가", 100) + "..."; got != want {
		t.Errorf("truncated content length = %d runes, want 100 + ellipsis", len([]rune(got)))
	}
	if result.DailyAnalysis[1].DiaryContent != "" {
		t.Errorf("scored day without entry should carry empty content, got %q",
			result.DailyAnalysis[1].DiaryContent)
	}
}

func TestBuildReportValidation(t *testing.T) {
	a := testAnalyzer()

	tests := []struct {
		name      string
		weekStart time.Time
		weekEnd   time.Time
		analysis  *domain.SentimentAnalysis
		wantCode  string
	}{
		{
			name:      "inverted range",
			weekStart: day("2025-01-19"),
			weekEnd:   day("2025-01-13"),
			analysis:  &domain.SentimentAnalysis{},
			wantCode:  apperr.CodeValidationFailed,
		},
		{
			name:      "nil analysis",
			weekStart: day("2025-01-13"),
			weekEnd:   day("2025-01-19"),
			analysis:  nil,
			wantCode:  apperr.CodeMissingField,
		},
		{
			name:      "malformed score date",
			weekStart: day("2025-01-13"),
			weekEnd:   day("2025-01-19"),
			analysis: &domain.SentimentAnalysis{
				DailyScores: []domain.DailyScore{{Date: "01/13/2025", Score: 6.0}},
			},
			wantCode: apperr.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.BuildReport("user-1", "빵먼", tt.weekStart, tt.weekEnd, nil, tt.analysis)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.IsAppError(err) {
				t.Fatalf("error %v is not an AppError", err)
			}
			if appErr := apperr.AsAppError(err); appErr.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestReportResultToDocument(t *testing.T) {
	a := testAnalyzer()

	result, err := a.BuildReport("user-1", "빵먼", day("2025-01-13"), day("2025-01-19"),
		[]*domain.DiaryEntry{entry("2025-01-13", "운동")},
		&domain.SentimentAnalysis{DailyScores: []domain.DailyScore{score("2025-01-13", 7.0)}})
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}

	doc := result.ToDocument()
	if doc["week_start"] != "2025-01-13" || doc["week_end"] != "2025-01-19" {
		t.Errorf("document dates = %v / %v, want ISO strings", doc["week_start"], doc["week_end"])
	}
	if doc["user_id"] != "user-1" {
		t.Errorf("document user_id = %v", doc["user_id"])
	}
	if doc["evaluation"] != "positive" {
		t.Errorf("document evaluation = %v, want positive", doc["evaluation"])
	}
}
