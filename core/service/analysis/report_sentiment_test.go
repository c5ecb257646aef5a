package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"report_server/core/domain"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _ string, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.response, s.err
}

func weekEntries() []*domain.DiaryEntry {
	d1, _ := time.Parse("2006-01-02", "2025-01-13")
	d2, _ := time.Parse("2006-01-02", "2025-01-14")
	return []*domain.DiaryEntry{
		{UserID: "user-1", Content: "오늘 운동을 했다", RecordDate: d1, Tags: []string{"운동"}},
		{UserID: "user-1", Content: "비가 와서 집에 있었다", RecordDate: d2, Tags: []string{"비"}},
	}
}

const validResponse = `{
	"daily_scores": [
		{"date": "2025-01-13", "score": 7.5, "sentiment": "활기찬 하루", "key_themes": ["운동"]},
		{"date": "2025-01-14", "score": 4.5, "sentiment": "차분한 하루", "key_themes": ["휴식"]}
	],
	"positive_patterns": ["운동"],
	"negative_patterns": [],
	"recommendations": ["규칙적인 운동을 유지해보세요."]
}`

func TestAnalyzeSentiment(t *testing.T) {
	stub := &stubCompleter{response: validResponse}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}

	if len(analysis.DailyScores) != 2 {
		t.Fatalf("got %d daily scores, want 2", len(analysis.DailyScores))
	}
	if analysis.DailyScores[0].Score != 7.5 {
		t.Errorf("first score = %v, want 7.5", analysis.DailyScores[0].Score)
	}
	if len(analysis.Recommendations) != 1 {
		t.Errorf("recommendations = %v, want one", analysis.Recommendations)
	}
}

func TestAnalyzeSentimentPromptContainsEntries(t *testing.T) {
	stub := &stubCompleter{response: validResponse}
	svc := NewService(stub)

	if _, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼"); err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(stub.prompts) != 1 {
		t.Fatalf("got %d LLM calls, want 1", len(stub.prompts))
	}

	prompt := stub.prompts[0]
	for _, fragment := range []string{"빵먼", "2025-01-13", "2025-01-14", "오늘 운동을 했다", "운동"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

func TestAnalyzeSentimentStripsCodeFences(t *testing.T) {
	stub := &stubCompleter{response: "```json\n" + validResponse + "\n```"}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(analysis.DailyScores) != 2 {
		t.Errorf("got %d daily scores from fenced response, want 2", len(analysis.DailyScores))
	}
}

func TestAnalyzeSentimentTrimsSurroundingProse(t *testing.T) {
	stub := &stubCompleter{response: "분석 결과입니다:\n" + validResponse + "\n이상입니다."}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(analysis.DailyScores) != 2 {
		t.Errorf("got %d daily scores from prose-wrapped response, want 2", len(analysis.DailyScores))
	}
}

func TestAnalyzeSentimentFallbackOnError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("rate limited")}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() must not surface model errors, got: %v", err)
	}

	if len(analysis.DailyScores) != 2 {
		t.Fatalf("fallback scores = %d, want one per entry", len(analysis.DailyScores))
	}
	for i, score := range analysis.DailyScores {
		if score.Score != 5.0 {
			t.Errorf("fallback score[%d] = %v, want 5.0", i, score.Score)
		}
		if score.Sentiment != "분석 완료" {
			t.Errorf("fallback sentiment[%d] = %q", i, score.Sentiment)
		}
	}
	if analysis.DailyScores[0].KeyThemes[0] != "운동" {
		t.Errorf("fallback themes should carry entry tags, got %v", analysis.DailyScores[0].KeyThemes)
	}
	if len(analysis.Recommendations) != 1 {
		t.Errorf("fallback recommendations = %v, want one", analysis.Recommendations)
	}
}

func TestAnalyzeSentimentFallbackOnGarbage(t *testing.T) {
	stub := &stubCompleter{response: "죄송합니다, 분석할 수 없습니다."}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(analysis.DailyScores) != 2 || analysis.DailyScores[0].Score != 5.0 {
		t.Errorf("expected neutral fallback, got %+v", analysis.DailyScores)
	}
}

func TestAnalyzeSentimentEmptyScoresBackfilled(t *testing.T) {
	stub := &stubCompleter{response: `{"daily_scores": [], "recommendations": ["조언"]}`}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), weekEntries(), "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(analysis.DailyScores) != 2 {
		t.Fatalf("got %d daily scores, want 2 backfilled", len(analysis.DailyScores))
	}
	if analysis.DailyScores[0].Date != "2025-01-13" {
		t.Errorf("backfilled date = %q", analysis.DailyScores[0].Date)
	}
	// The model's recommendations survive even when scores are backfilled.
	if len(analysis.Recommendations) != 1 || analysis.Recommendations[0] != "조언" {
		t.Errorf("recommendations = %v", analysis.Recommendations)
	}
}

func TestAnalyzeSentimentNoEntries(t *testing.T) {
	stub := &stubCompleter{response: validResponse}
	svc := NewService(stub)

	analysis, err := svc.AnalyzeSentiment(context.Background(), nil, "빵먼")
	if err != nil {
		t.Fatalf("AnalyzeSentiment() error: %v", err)
	}
	if len(analysis.DailyScores) != 0 {
		t.Errorf("got scores without entries: %v", analysis.DailyScores)
	}
	if len(stub.prompts) != 0 {
		t.Error("LLM should not be called for an empty week")
	}
}
