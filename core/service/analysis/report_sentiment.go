// Package analysis implements the LLM sentiment collaborator.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"report_server/core/domain"
	"report_server/pkg/logger"
)

const systemPrompt = `당신은 사용자의 주간 감정 분석 리포트를 생성하는 전문 AI 상담사입니다.

## 역할
1. 사용자의 일기를 분석하여 감정 상태를 파악합니다
2. 일별 감정 점수(1-10)를 산출합니다
3. 긍정/부정 패턴을 발견합니다
4. 실천 가능한 개선 제안을 합니다

## 감정 점수 기준
- 1-3점: 부정적 (슬픔, 분노, 불안, 스트레스)
- 4-6점: 중립적 (평범, 무난, 일상적)
- 7-10점: 긍정적 (기쁨, 행복, 만족, 설렘)

## 출력 형식
반드시 아래 구조의 JSON 객체만 출력합니다. 다른 텍스트는 포함하지 마세요.
{
  "daily_scores": [
    {"date": "YYYY-MM-DD", "score": 7.5, "sentiment": "감정 상태 설명", "key_themes": ["테마"]}
  ],
  "positive_patterns": ["패턴"],
  "negative_patterns": ["패턴"],
  "recommendations": ["실천 가능한 조언 (1-3개)"]
}`

// completionTimeout bounds one LLM round trip.
const completionTimeout = 60 * time.Second

// completer is the slice of llm.Client this service needs.
type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service analyzes a week of diary entries with an LLM. Any failure —
// breaker open, timeout, malformed response — degrades to a neutral
// fallback so report generation never blocks on the model.
type Service struct {
	llm completer
	cb  *gobreaker.CircuitBreaker
	log *logger.Logger
}

func NewService(llm completer) *Service {
	cbSettings := gobreaker.Settings{
		Name:        "sentiment-llm",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
	}

	return &Service{
		llm: llm,
		cb:  gobreaker.NewCircuitBreaker(cbSettings),
		log: logger.WithField("component", "sentiment"),
	}
}

// AnalyzeSentiment scores each entry's day, extracts themes, and proposes
// recommendations. Never returns an error for model-side failures; the
// neutral fallback keeps the pipeline moving.
func (s *Service) AnalyzeSentiment(ctx context.Context, entries []*domain.DiaryEntry, nickname string) (*domain.SentimentAnalysis, error) {
	if len(entries) == 0 {
		return &domain.SentimentAnalysis{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	prompt := buildUserPrompt(entries, nickname)

	raw, err := s.cb.Execute(func() (any, error) {
		return s.llm.CompleteJSON(ctx, systemPrompt, prompt)
	})
	if err != nil {
		s.log.WithError(err).Warn("sentiment analysis failed, using neutral fallback")
		return fallbackAnalysis(entries), nil
	}

	analysis, err := parseAnalysis(raw.(string), entries)
	if err != nil {
		s.log.WithError(err).Warn("unparseable sentiment response, using neutral fallback")
		return fallbackAnalysis(entries), nil
	}
	return analysis, nil
}

// buildUserPrompt renders the week's entries as numbered diary blocks.
func buildUserPrompt(entries []*domain.DiaryEntry, nickname string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "작성자: %s\n분석 기간: %s ~ %s\n\n",
		nickname, entries[0].RecordDateISO(), entries[len(entries)-1].RecordDateISO())

	for i, entry := range entries {
		fmt.Fprintf(&b, "[일기 %d] 날짜: %s\n", i+1, entry.RecordDateISO())
		if len(entry.Tags) > 0 {
			fmt.Fprintf(&b, "태그: %s\n", strings.Join(entry.Tags, ", "))
		}
		fmt.Fprintf(&b, "내용:\n%s\n\n", entry.Content)
	}

	b.WriteString("위 일기들의 감정을 분석하여 JSON으로 출력해주세요.")
	return b.String()
}

// parseAnalysis decodes the model's JSON, tolerating code fences and
// leading prose around the object.
func parseAnalysis(raw string, entries []*domain.DiaryEntry) (*domain.SentimentAnalysis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "{"); start > 0 {
		cleaned = cleaned[start:]
	}
	if end := strings.LastIndex(cleaned, "}"); end >= 0 && end < len(cleaned)-1 {
		cleaned = cleaned[:end+1]
	}

	var analysis domain.SentimentAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("decode sentiment response: %w", err)
	}

	// A structurally valid object with no scores is as useless as garbage:
	// backfill every day at neutral.
	if len(analysis.DailyScores) == 0 {
		analysis.DailyScores = fallbackScores(entries)
	}
	return &analysis, nil
}

func fallbackAnalysis(entries []*domain.DiaryEntry) *domain.SentimentAnalysis {
	return &domain.SentimentAnalysis{
		DailyScores:     fallbackScores(entries),
		Recommendations: []string{"이번 주도 꾸준히 일기를 작성해주셔서 감사합니다. 다음 주에도 계속 기록해보세요."},
	}
}

func fallbackScores(entries []*domain.DiaryEntry) []domain.DailyScore {
	scores := make([]domain.DailyScore, 0, len(entries))
	for _, entry := range entries {
		scores = append(scores, domain.DailyScore{
			Date:      entry.RecordDateISO(),
			Score:     5.0,
			Sentiment: "분석 완료",
			KeyThemes: entry.Tags,
		})
	}
	return scores
}
