// Package mail implements the report notification sender over the Gmail API.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"report_server/core/domain"
	"report_server/core/port/out"
	"report_server/pkg/logger"
)

// retryDelays between send attempts. Retries are best-effort; the report
// row is already completed when the notification goes out.
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second}

// GmailAdapter implements out.ReportNotifier. It sends from a single
// service account authorized once via a long-lived refresh token.
type GmailAdapter struct {
	config       *oauth2.Config
	refreshToken string
	sender       string
	apiBaseURL   string
	maxRetries   int
	cb           *gobreaker.CircuitBreaker
	log          *logger.Logger
}

// GmailConfig holds Gmail sender configuration.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	SenderEmail  string
	APIBaseURL   string
	MaxRetries   int
}

// NewGmailAdapter creates a new Gmail notification adapter.
func NewGmailAdapter(cfg *GmailConfig) *GmailAdapter {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 || maxRetries > len(retryDelays) {
		maxRetries = len(retryDelays)
	}

	cbSettings := gobreaker.Settings{
		Name:        "gmail-send",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name, "from": from.String(), "to": to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &GmailAdapter{
		config:       config,
		refreshToken: cfg.RefreshToken,
		sender:       cfg.SenderEmail,
		apiBaseURL:   strings.TrimSuffix(cfg.APIBaseURL, "/"),
		maxRetries:   maxRetries,
		cb:           gobreaker.NewCircuitBreaker(cbSettings),
		log:          logger.WithField("component", "gmail"),
	}
}

// SendReportNotification emails the completed report summary. Fixed-delay
// retries; the final error is returned so the caller can log it, but a
// failed notification never fails the report.
func (a *GmailAdapter) SendReportNotification(ctx context.Context, recipient string, report *domain.ReportResult) error {
	raw := a.buildRawMessage(recipient, report)
	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelays[attempt-1]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = a.send(ctx, gmailMsg)
		if lastErr == nil {
			a.log.WithField("recipient", recipient).Info("report notification sent")
			return nil
		}
		a.log.WithError(lastErr).WithFields(map[string]any{
			"recipient": recipient, "attempt": attempt + 1,
		}).Warn("report notification send failed")
	}

	return fmt.Errorf("send report notification: %w", lastErr)
}

func (a *GmailAdapter) send(ctx context.Context, msg *gmail.Message) error {
	svc, err := a.getService(ctx)
	if err != nil {
		return err
	}

	_, err = a.cb.Execute(func() (any, error) {
		_, apiErr := svc.Users.Messages.Send("me", msg).Context(ctx).Do()
		if apiErr != nil {
			if gErr, ok := apiErr.(*googleapi.Error); ok {
				switch gErr.Code {
				case 500, 502, 503, 429:
					// Server-side errors trip the breaker.
					return nil, apiErr
				case 400, 401, 403, 404:
					// Client errors must not open the circuit.
					return nil, &nonCircuitError{err: apiErr}
				}
			}
			return nil, apiErr
		}
		return nil, nil
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nce.err
	}
	return err
}

func (a *GmailAdapter) getService(ctx context.Context) (*gmail.Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	token := &oauth2.Token{RefreshToken: a.refreshToken}
	return gmail.NewService(ctx, option.WithTokenSource(
		a.config.TokenSource(ctx, token),
	))
}

// buildRawMessage renders the RFC 2822 multipart message.
func (a *GmailAdapter) buildRawMessage(recipient string, report *domain.ReportResult) string {
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("From: %s\r\n", a.sender))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", reportSubject(report)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(a.buildTextBody(report))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(a.buildHTMLBody(report))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.String()
}

func reportSubject(report *domain.ReportResult) string {
	return fmt.Sprintf("📊 %s님의 주간 감정 분석이 완료되었습니다", report.Nickname)
}

func (a *GmailAdapter) reportURL(report *domain.ReportResult) string {
	return fmt.Sprintf("%s/report/%s", a.apiBaseURL, report.UserID)
}

func (a *GmailAdapter) buildTextBody(report *domain.ReportResult) string {
	evaluationText := "긍정적"
	if report.Evaluation == domain.EvaluationNegative {
		evaluationText = "부정적"
	}

	var feedback strings.Builder
	for _, fb := range topFeedback(report) {
		feedback.WriteString("- " + fb + "\n")
	}

	return fmt.Sprintf(`%s님의 주간 감정 분석이 완료되었습니다.

분석 기간: %s ~ %s
평균 감정 점수: %.1f/10
전반적인 평가: %s

주요 피드백:
%s
전체 리포트 보기: %s

---
이 이메일은 주간 감정 분석 서비스에서 자동으로 발송되었습니다.
`,
		report.Nickname,
		report.WeekStart.Format("2006-01-02"), report.WeekEnd.Format("2006-01-02"),
		report.AverageScore, evaluationText,
		feedback.String(), a.reportURL(report))
}

func (a *GmailAdapter) buildHTMLBody(report *domain.ReportResult) string {
	evaluationText := "긍정적"
	evaluationEmoji := "😊"
	if report.Evaluation == domain.EvaluationNegative {
		evaluationText = "부정적"
		evaluationEmoji = "😔"
	}

	var feedbackHTML strings.Builder
	for _, fb := range topFeedback(report) {
		feedbackHTML.WriteString("<li>" + fb + "</li>")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>주간 감정 분석 완료</title>
    <style>
        body { font-family: 'Noto Sans KR', sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .score-box { background: white; padding: 20px; border-radius: 10px; text-align: center; margin: 20px 0; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .score { font-size: 48px; font-weight: bold; color: #667eea; }
        .feedback { background: white; padding: 15px; border-radius: 10px; margin: 15px 0; }
        .feedback ul { margin: 0; padding-left: 20px; }
        .feedback li { margin: 10px 0; }
        .button { display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; margin-top: 20px; }
        .footer { text-align: center; color: #888; font-size: 12px; margin-top: 30px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s 주간 감정 분석 완료</h1>
            <p>%s님의 %s ~ %s 분석 결과</p>
        </div>
        <div class="content">
            <div class="score-box">
                <p>이번 주 평균 감정 점수</p>
                <div class="score">%.1f/10</div>
                <p>전반적으로 <strong>%s</strong>인 한 주였습니다</p>
            </div>
            <div class="feedback">
                <h3>📝 주요 피드백</h3>
                <ul>%s</ul>
            </div>
            <div style="text-align: center;">
                <a href="%s" class="button">전체 리포트 보기</a>
            </div>
        </div>
        <div class="footer">
            <p>이 이메일은 주간 감정 분석 서비스에서 자동으로 발송되었습니다.</p>
        </div>
    </div>
</body>
</html>
`,
		evaluationEmoji,
		report.Nickname,
		report.WeekStart.Format("2006-01-02"), report.WeekEnd.Format("2006-01-02"),
		report.AverageScore, evaluationText,
		feedbackHTML.String(), a.reportURL(report))
}

// topFeedback caps the email body at five feedback lines.
func topFeedback(report *domain.ReportResult) []string {
	feedback := report.Feedback
	if len(feedback) > 5 {
		feedback = feedback[:5]
	}
	return feedback
}

// nonCircuitError wraps client-side API errors so they bypass the breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

var _ out.ReportNotifier = (*GmailAdapter)(nil)
