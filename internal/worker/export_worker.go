package worker

import (
	"context"
	"errors"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExportBuilder renders a queued export job.
type ExportBuilder interface {
	Build(ctx context.Context, jobID string) error
}

// ExportWorker consumes export_jobs_queue one job at a time.
type ExportWorker struct {
	builder ExportBuilder
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewExportWorker(builder ExportBuilder, rdb *redis.Client, log zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		builder: builder,
		rdb:     rdb,
		log:     log.With().Str("component", "export_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *ExportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExportWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExportWorker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ExportWorker) processNext(ctx context.Context) {
	item, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ExportJobsQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}
	if len(item) < 2 {
		return
	}

	jobID := item[1]
	start := time.Now()
	if err := w.builder.Build(ctx, jobID); err != nil {
		w.log.Error().Err(err).Str("job_id", jobID).Msg("Export failed")
		return
	}
	w.log.Info().Str("job_id", jobID).Dur("took", time.Since(start)).Msg("Export built")
}
