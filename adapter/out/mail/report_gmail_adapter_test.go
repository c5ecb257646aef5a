package mail

import (
	"strings"
	"testing"
	"time"

	"report_server/core/domain"
)

func sampleReport() *domain.ReportResult {
	weekStart, _ := time.Parse("2006-01-02", "2025-01-13")
	weekEnd, _ := time.Parse("2006-01-02", "2025-01-19")
	return &domain.ReportResult{
		UserID:       "user-1",
		Nickname:     "빵먼",
		WeekStart:    weekStart,
		WeekEnd:      weekEnd,
		AverageScore: 6.2,
		Evaluation:   domain.EvaluationPositive,
		Feedback: []string{
			"피드백 1", "피드백 2", "피드백 3", "피드백 4", "피드백 5", "피드백 6",
		},
	}
}

func testAdapter() *GmailAdapter {
	return NewGmailAdapter(&GmailConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		SenderEmail:  "noreply@example.com",
		APIBaseURL:   "https://app.example.com/",
		MaxRetries:   2,
	})
}

func TestReportSubject(t *testing.T) {
	got := reportSubject(sampleReport())
	want := "📊 빵먼님의 주간 감정 분석이 완료되었습니다"
	if got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}
}

func TestBuildTextBody(t *testing.T) {
	a := testAdapter()
	body := a.buildTextBody(sampleReport())

	for _, fragment := range []string{
		"빵먼님의 주간 감정 분석이 완료되었습니다",
		"2025-01-13 ~ 2025-01-19",
		"6.2/10",
		"긍정적",
		"- 피드백 1",
		"- 피드백 5",
		"https://app.example.com/report/user-1",
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("text body missing %q", fragment)
		}
	}
	// Only the top five feedback lines are included.
	if strings.Contains(body, "피드백 6") {
		t.Error("text body should cap feedback at five lines")
	}
}

func TestBuildHTMLBodyNegativeWeek(t *testing.T) {
	a := testAdapter()
	report := sampleReport()
	report.AverageScore = 3.8
	report.Evaluation = domain.EvaluationNegative

	body := a.buildHTMLBody(report)
	for _, fragment := range []string{"😔", "부정적", "3.8/10", "<li>피드백 1</li>"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("html body missing %q", fragment)
		}
	}
}

func TestBuildRawMessage(t *testing.T) {
	a := testAdapter()
	raw := a.buildRawMessage("user@example.com", sampleReport())

	for _, fragment := range []string{
		"From: noreply@example.com\r\n",
		"To: user@example.com\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative;",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
	} {
		if !strings.Contains(raw, fragment) {
			t.Errorf("raw message missing %q", fragment)
		}
	}
}
