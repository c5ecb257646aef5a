package report

import (
	"fmt"
	"sort"

	"report_server/core/domain"
)

const (
	maxExtremeDays      = 3
	feedbackExtremeDays = 2
	feedbackPatterns    = 3
)

// ExtremeDays returns the up-to-3 days that best represent the week's
// direction: highest scores first for a positive week, lowest first for a
// negative one. The sort is stable so equal scores keep input order.
func (a *Analyzer) ExtremeDays(scores []domain.DailyScore, evaluation domain.Evaluation) []domain.DailyScore {
	if len(scores) == 0 {
		return nil
	}

	sorted := make([]domain.DailyScore, len(scores))
	copy(sorted, scores)

	sort.SliceStable(sorted, func(i, j int) bool {
		if evaluation == domain.EvaluationPositive {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Score < sorted[j].Score
	})

	if len(sorted) > maxExtremeDays {
		sorted = sorted[:maxExtremeDays]
	}
	return sorted
}

// GenerateFeedback composes the report's narrative feedback in a fixed
// order: up to two extreme-day sentences, up to three pattern sentences,
// then exactly one closing sentence. Collaborator recommendations are
// appended by the aggregator, not here.
func (a *Analyzer) GenerateFeedback(scores []domain.DailyScore, patterns []domain.Pattern, evaluation domain.Evaluation) []string {
	var feedback []string

	extremeDays := a.ExtremeDays(scores, evaluation)
	if len(extremeDays) > feedbackExtremeDays {
		extremeDays = extremeDays[:feedbackExtremeDays]
	}
	for _, day := range extremeDays {
		if evaluation == domain.EvaluationPositive {
			feedback = append(feedback, fmt.Sprintf(
				"%s에 감정 점수가 %s점으로 높았습니다. 이 날의 긍정적인 경험을 기억하세요.",
				day.Date, formatScore(day.Score)))
		} else {
			feedback = append(feedback, fmt.Sprintf(
				"%s에 감정 점수가 %s점으로 낮았습니다. 이 날 무엇이 힘들었는지 돌아보세요.",
				day.Date, formatScore(day.Score)))
		}
	}

	top := patterns
	if len(top) > feedbackPatterns {
		top = top[:feedbackPatterns]
	}
	for _, pattern := range top {
		if pattern.Correlation == domain.EvaluationPositive {
			feedback = append(feedback, fmt.Sprintf(
				"'%s' 활동이 %d회 있었고, 평균 점수가 %s점으로 높았습니다. 이 활동을 계속 유지하세요.",
				pattern.Value, pattern.Frequency, formatScore(pattern.AverageScore)))
		} else {
			feedback = append(feedback, fmt.Sprintf(
				"'%s' 관련 날의 평균 점수가 %s점으로 낮았습니다. 이 상황에서 스트레스를 줄일 방법을 찾아보세요.",
				pattern.Value, formatScore(pattern.AverageScore)))
		}
	}

	if evaluation == domain.EvaluationPositive {
		feedback = append(feedback, "이번 주는 전반적으로 긍정적인 한 주였습니다. 좋은 습관을 계속 유지하세요!")
	} else {
		feedback = append(feedback, "이번 주는 다소 힘든 한 주였을 수 있습니다. 충분한 휴식과 자기 돌봄을 권장합니다.")
	}

	return feedback
}

// formatScore renders a score with one decimal place so feedback text is
// byte-identical across runs regardless of float representation.
func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
