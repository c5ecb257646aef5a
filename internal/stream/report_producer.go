package stream

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Producer struct {
	stream *RedisStream
}

func NewProducer(stream *RedisStream) *Producer {
	return &Producer{stream: stream}
}

// Job is the wire envelope for background jobs.
type Job struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

const JobTypeReportGenerate = "report.generate"

func (p *Producer) PublishReportGenerate(ctx context.Context, reportID int64, userID string, weekStart, weekEnd time.Time) (string, error) {
	job := &Job{
		ID:   uuid.New().String(),
		Type: JobTypeReportGenerate,
		Payload: map[string]any{
			"report_id":  reportID,
			"user_id":    userID,
			"week_start": weekStart.Format("2006-01-02"),
			"week_end":   weekEnd.Format("2006-01-02"),
		},
		CreatedAt: time.Now(),
	}
	return p.stream.Publish(ctx, StreamReportJobs, job)
}
