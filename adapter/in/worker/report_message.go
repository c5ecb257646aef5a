// Package worker processes background jobs from the Redis stream.
package worker

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

const (
	JobReportGenerate JobType = "report.generate"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// ReportGeneratePayload carries a report generation job. Dates are ISO
// strings on the wire.
type ReportGeneratePayload struct {
	ReportID  int64  `json:"report_id"`
	UserID    string `json:"user_id"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
}

// ParsePayload decodes a message payload into a typed struct by going
// through JSON once more; payload values arrive as map[string]any.
func ParsePayload[T any](msg *Message) (*T, error) {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
