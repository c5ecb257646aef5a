package bootstrap

import (
	"context"
	"os"
	"sync"

	"report_server/adapter/in/worker"
	"report_server/config"
	"report_server/internal/scheduler"
	"report_server/internal/stream"
	"report_server/pkg/logger"

	"github.com/rs/zerolog"
)

// Worker runs the stream consumer and, when enabled, the weekly scheduler.
type Worker struct {
	consumer  *stream.Consumer
	scheduler *scheduler.Scheduler
	deps      *Dependencies
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	zlog      zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	deps, cleanup, err := NewDependencies(cfg, zlog)
	if err != nil {
		return nil, nil, err
	}

	processor := worker.NewReportProcessor(deps.ReportService, zlog)
	handler := worker.NewHandler(processor, zlog)

	consumer := stream.NewConsumer(deps.Stream, handler, stream.ConsumerConfig{
		Name:    cfg.ConsumerID,
		Batch:   int64(cfg.ConsumerBatch),
		BlockMS: cfg.ConsumerBlockMS,
	}, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		consumer: consumer,
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
		zlog:     zlog,
	}

	if cfg.SchedulerEnabled {
		w.scheduler = scheduler.New(deps.UserRepo, deps.ReportRepo, deps.ReportService, zlog)
	}

	return w, cleanup, nil
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.consumer.Start(w.ctx)
	}()

	if w.scheduler != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.scheduler.Run(w.ctx)
		}()
		logger.Info("Weekly report scheduler enabled")
	}

	w.wg.Wait()
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.zlog.Info().Msg("worker stopped")
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
