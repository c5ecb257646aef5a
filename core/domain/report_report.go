package domain

import "time"

// Evaluation is the binary weekly sentiment label.
type Evaluation string

const (
	EvaluationPositive Evaluation = "positive"
	EvaluationNegative Evaluation = "negative"
)

// Report generation lifecycle states, persisted with the report row.
type ReportStatus string

const (
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// TagType classifies a diary tag for pattern analysis.
type TagType string

const (
	TagTypeWeather    TagType = "weather"
	TagTypeActivity   TagType = "activity"
	TagTypeExperience TagType = "experience"
)

// DailyScore is one day's sentiment result from the LLM collaborator.
// Immutable once constructed; Date is an ISO date string.
type DailyScore struct {
	Date      string   `json:"date"`
	Score     float64  `json:"score"`
	Sentiment string   `json:"sentiment"`
	KeyThemes []string `json:"key_themes"`
}

// SentimentAnalysis is the LLM collaborator's full output for a week.
// Recommendations are opaque free text appended verbatim to report feedback.
type SentimentAnalysis struct {
	DailyScores      []DailyScore `json:"daily_scores"`
	PositivePatterns []string     `json:"positive_patterns"`
	NegativePatterns []string     `json:"negative_patterns"`
	Recommendations  []string     `json:"recommendations"`
}

// Pattern is a tag correlated with score direction across the analyzed week.
// Correlation is positive iff AverageScore >= 5.0.
type Pattern struct {
	Type         TagType    `json:"type"`
	Value        string     `json:"value"`
	Correlation  Evaluation `json:"correlation"`
	Frequency    int        `json:"frequency"`
	AverageScore float64    `json:"average_score"`
}

// DailyAnalysis joins a day's sentiment score with its diary content
// (truncated for display).
type DailyAnalysis struct {
	Date         string   `json:"date"`
	Score        float64  `json:"score"`
	Sentiment    string   `json:"sentiment"`
	DiaryContent string   `json:"diary_content"`
	KeyThemes    []string `json:"key_themes"`
}

// ReportResult is the aggregation engine's output: a fully computed weekly
// report before persistence assigns it an ID and timestamps.
type ReportResult struct {
	UserID         string          `json:"user_id"`
	Nickname       string          `json:"nickname"`
	WeekStart      time.Time       `json:"week_start"`
	WeekEnd        time.Time       `json:"week_end"`
	AverageScore   float64         `json:"average_score"`
	Evaluation     Evaluation      `json:"evaluation"`
	DailyAnalysis  []DailyAnalysis `json:"daily_analysis"`
	Patterns       []Pattern       `json:"patterns"`
	Feedback       []string        `json:"feedback"`
	HasPartialData bool            `json:"has_partial_data"`
}

// ToDocument returns a flat, JSON-ready representation with ISO dates, the
// shape handed to the document store and the persistence layer.
func (r *ReportResult) ToDocument() map[string]any {
	daily := make([]map[string]any, len(r.DailyAnalysis))
	for i, d := range r.DailyAnalysis {
		daily[i] = map[string]any{
			"date":          d.Date,
			"score":         d.Score,
			"sentiment":     d.Sentiment,
			"diary_content": d.DiaryContent,
			"key_themes":    d.KeyThemes,
		}
	}
	patterns := make([]map[string]any, len(r.Patterns))
	for i, p := range r.Patterns {
		patterns[i] = map[string]any{
			"type":          string(p.Type),
			"value":         p.Value,
			"correlation":   string(p.Correlation),
			"frequency":     p.Frequency,
			"average_score": p.AverageScore,
		}
	}
	return map[string]any{
		"user_id":          r.UserID,
		"nickname":         r.Nickname,
		"week_start":       r.WeekStart.Format("2006-01-02"),
		"week_end":         r.WeekEnd.Format("2006-01-02"),
		"average_score":    r.AverageScore,
		"evaluation":       string(r.Evaluation),
		"daily_analysis":   daily,
		"patterns":         patterns,
		"feedback":         r.Feedback,
		"has_partial_data": r.HasPartialData,
	}
}

// WeeklyReport is the persisted report row.
type WeeklyReport struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"user_id"`
	Nickname       string          `json:"nickname"`
	WeekStart      time.Time       `json:"week_start"`
	WeekEnd        time.Time       `json:"week_end"`
	AverageScore   float64         `json:"average_score"`
	Evaluation     Evaluation      `json:"evaluation"`
	DailyAnalysis  []DailyAnalysis `json:"daily_analysis"`
	Patterns       []Pattern       `json:"patterns"`
	Feedback       []string        `json:"feedback"`
	HasPartialData bool            `json:"has_partial_data"`
	Status         ReportStatus    `json:"status"`
	DocumentKey    *string         `json:"document_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
