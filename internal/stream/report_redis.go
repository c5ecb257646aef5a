// Package stream provides the Redis Streams job transport.
package stream

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StreamReportJobs carries report generation jobs.
const StreamReportJobs = "report:jobs"

// GroupReportWorkers is the consumer group shared by worker instances.
const GroupReportWorkers = "report-workers"

type RedisStream struct {
	client *redis.Client
	group  string
	log    zerolog.Logger
}

func NewRedisStream(client *redis.Client, group string, log zerolog.Logger) *RedisStream {
	return &RedisStream{
		client: client,
		group:  group,
		log:    log,
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": string(jsonData)},
	}).Result()
}

// Consume reads the stream until ctx is cancelled. Messages are acked
// whether or not the handler succeeds: job delivery is at-most-once, and a
// failed job is recorded on its report row rather than redelivered.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, batch int64, block time.Duration, handler func(id string, data []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    batch,
			Block:    block,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				s.log.Error().Err(err).Str("stream", stream).Msg("stream read error")
				time.Sleep(time.Second)
			}
			continue
		}

		for _, st := range streams {
			for _, msg := range st.Messages {
				data, ok := msg.Values["data"].(string)
				if ok {
					if err := handler(msg.ID, []byte(data)); err != nil {
						s.log.Error().Err(err).Str("id", msg.ID).Msg("handler error")
					}
				}

				if err := s.client.XAck(ctx, st.Stream, s.group, msg.ID).Err(); err != nil {
					s.log.Error().Err(err).Str("id", msg.ID).Msg("ack error")
				}
			}
		}
	}
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
