package stream

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"report_server/adapter/in/worker"
)

// Consumer pumps report jobs from the stream into the worker handler.
type Consumer struct {
	stream  *RedisStream
	handler *worker.Handler
	name    string
	batch   int64
	block   time.Duration
	log     zerolog.Logger
}

type ConsumerConfig struct {
	Name    string
	Batch   int64
	BlockMS int
}

func NewConsumer(stream *RedisStream, handler *worker.Handler, cfg ConsumerConfig, log zerolog.Logger) *Consumer {
	batch := cfg.Batch
	if batch <= 0 {
		batch = 10
	}
	block := time.Duration(cfg.BlockMS) * time.Millisecond
	if block <= 0 {
		block = 5 * time.Second
	}

	return &Consumer{
		stream:  stream,
		handler: handler,
		name:    cfg.Name,
		batch:   batch,
		block:   block,
		log:     log.With().Str("consumer", cfg.Name).Logger(),
	}
}

// Start creates the consumer group and consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	if err := c.stream.CreateGroup(ctx, StreamReportJobs); err != nil {
		c.log.Error().Err(err).Str("stream", StreamReportJobs).Msg("failed to create consumer group")
	}

	c.log.Info().Str("stream", StreamReportJobs).Msg("consumer started")

	c.stream.Consume(ctx, StreamReportJobs, c.name, c.batch, c.block, func(id string, data []byte) error {
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			c.log.Error().Err(err).Str("id", id).Msg("failed to unmarshal job")
			return err
		}

		msg := &worker.Message{
			ID:        job.ID,
			Type:      job.Type,
			Payload:   job.Payload,
			CreatedAt: job.CreatedAt,
		}
		return c.handler.Process(ctx, msg)
	})
}
