package report

import (
	"reflect"
	"strings"
	"testing"

	"report_server/core/domain"
)

func TestExtremeDaysPositiveWeek(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 7.5),
		score("2025-01-14", 6.0),
		score("2025-01-15", 8.0),
		score("2025-01-16", 4.0),
		score("2025-01-17", 5.5),
	}

	days := a.ExtremeDays(scores, domain.EvaluationPositive)
	got := make([]string, len(days))
	for i, d := range days {
		got[i] = d.Date
	}
	want := []string{"2025-01-15", "2025-01-13", "2025-01-14"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extreme days = %v, want %v", got, want)
	}
}

func TestExtremeDaysNegativeWeek(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 3.0),
		score("2025-01-14", 6.0),
		score("2025-01-15", 2.5),
		score("2025-01-16", 4.0),
	}

	days := a.ExtremeDays(scores, domain.EvaluationNegative)
	got := make([]string, len(days))
	for i, d := range days {
		got[i] = d.Date
	}
	want := []string{"2025-01-15", "2025-01-13", "2025-01-16"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extreme days = %v, want %v", got, want)
	}
}

func TestExtremeDaysStableOnTies(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 7.0),
		score("2025-01-14", 7.0),
		score("2025-01-15", 7.0),
		score("2025-01-16", 7.0),
	}

	days := a.ExtremeDays(scores, domain.EvaluationPositive)
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	for i, wantDate := range []string{"2025-01-13", "2025-01-14", "2025-01-15"} {
		if days[i].Date != wantDate {
			t.Errorf("days[%d].Date = %s, want %s (input order on ties)", i, days[i].Date, wantDate)
		}
	}
}

func TestExtremeDaysDoesNotMutateInput(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 2.0),
		score("2025-01-14", 9.0),
	}
	a.ExtremeDays(scores, domain.EvaluationPositive)

	if scores[0].Date != "2025-01-13" || scores[1].Date != "2025-01-14" {
		t.Errorf("input slice was reordered: %v", scores)
	}
}

func TestExtremeDaysEmpty(t *testing.T) {
	a := testAnalyzer()
	if got := a.ExtremeDays(nil, domain.EvaluationPositive); len(got) != 0 {
		t.Errorf("ExtremeDays(nil) = %v, want empty", got)
	}
}

func TestGenerateFeedbackPositiveWeek(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 7.5),
		score("2025-01-14", 6.0),
		score("2025-01-15", 8.0),
	}
	patterns := []domain.Pattern{
		{Type: domain.TagTypeWeather, Value: "맑음", Correlation: domain.EvaluationPositive, Frequency: 2, AverageScore: 7.8},
		{Type: domain.TagTypeExperience, Value: "스트레스", Correlation: domain.EvaluationNegative, Frequency: 1, AverageScore: 4.0},
	}

	feedback := a.GenerateFeedback(scores, patterns, domain.EvaluationPositive)

	want := []string{
		"2025-01-15에 감정 점수가 8.0점으로 높았습니다. 이 날의 긍정적인 경험을 기억하세요.",
		"2025-01-13에 감정 점수가 7.5점으로 높았습니다. 이 날의 긍정적인 경험을 기억하세요.",
		"'맑음' 활동이 2회 있었고, 평균 점수가 7.8점으로 높았습니다. 이 활동을 계속 유지하세요.",
		"'스트레스' 관련 날의 평균 점수가 4.0점으로 낮았습니다. 이 상황에서 스트레스를 줄일 방법을 찾아보세요.",
		"이번 주는 전반적으로 긍정적인 한 주였습니다. 좋은 습관을 계속 유지하세요!",
	}
	if !reflect.DeepEqual(feedback, want) {
		t.Errorf("feedback = %#v, want %#v", feedback, want)
	}
}

func TestGenerateFeedbackNegativeWeek(t *testing.T) {
	a := testAnalyzer()

	scores := []domain.DailyScore{
		score("2025-01-13", 3.0),
		score("2025-01-14", 4.5),
	}

	feedback := a.GenerateFeedback(scores, nil, domain.EvaluationNegative)

	want := []string{
		"2025-01-13에 감정 점수가 3.0점으로 낮았습니다. 이 날 무엇이 힘들었는지 돌아보세요.",
		"2025-01-14에 감정 점수가 4.5점으로 낮았습니다. 이 날 무엇이 힘들었는지 돌아보세요.",
		"이번 주는 다소 힘든 한 주였을 수 있습니다. 충분한 휴식과 자기 돌봄을 권장합니다.",
	}
	if !reflect.DeepEqual(feedback, want) {
		t.Errorf("feedback = %#v, want %#v", feedback, want)
	}
}

func TestGenerateFeedbackCapsSections(t *testing.T) {
	a := testAnalyzer()

	// Five scored days and five patterns: only 2 extreme-day sentences and
	// 3 pattern sentences survive, plus the closing line.
	scores := []domain.DailyScore{
		score("2025-01-13", 9.0),
		score("2025-01-14", 8.0),
		score("2025-01-15", 7.0),
		score("2025-01-16", 6.0),
		score("2025-01-17", 5.0),
	}
	var patterns []domain.Pattern
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		patterns = append(patterns, domain.Pattern{
			Type: domain.TagTypeExperience, Value: v,
			Correlation: domain.EvaluationPositive, Frequency: 1, AverageScore: 7.0,
		})
	}

	feedback := a.GenerateFeedback(scores, patterns, domain.EvaluationPositive)
	if len(feedback) != 6 {
		t.Fatalf("got %d feedback sentences, want 6 (2 days + 3 patterns + closing)", len(feedback))
	}
	for _, sentence := range feedback[2:5] {
		if !strings.Contains(sentence, "활동이") {
			t.Errorf("expected pattern sentence, got %q", sentence)
		}
	}
	if feedback[5] != "이번 주는 전반적으로 긍정적인 한 주였습니다. 좋은 습관을 계속 유지하세요!" {
		t.Errorf("last sentence = %q, want closing line", feedback[5])
	}
}

func TestGenerateFeedbackEmptyInputsStillCloses(t *testing.T) {
	a := testAnalyzer()

	feedback := a.GenerateFeedback(nil, nil, domain.EvaluationNegative)
	if len(feedback) != 1 {
		t.Fatalf("got %d sentences, want only the closing line", len(feedback))
	}
	if feedback[0] != "이번 주는 다소 힘든 한 주였을 수 있습니다. 충분한 휴식과 자기 돌봄을 권장합니다." {
		t.Errorf("closing = %q", feedback[0])
	}
}
