package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptStore writes submitted attempts.
type AttemptStore interface {
	InsertBatch(ctx context.Context, batch []model.Attempt) error
	Insert(ctx context.Context, a *model.Attempt) error
}

// AttemptWorker drains persist_attempts_queue into PostgreSQL in batches.
type AttemptWorker struct {
	store AttemptStore
	rdb   *redis.Client
	log   zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
}

func NewAttemptWorker(store AttemptStore, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		store:        store,
		rdb:          rdb,
		log:          log.With().Str("component", "attempt_worker").Logger(),
		batchSize:    AttemptBatchSize,
		batchTimeout: AttemptBatchTimeout,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.Attempt, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(AttemptPollTimeout)
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var a model.Attempt
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid attempt payload")
				continue
			}
			batch = append(batch, a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

// flushSafe writes the batch. When the bulk insert fails each attempt is
// retried alone. Rows the database rejects outright are logged and dropped;
// the rest go back on the queue.
func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.Attempt) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Attempts stored")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, using fallback")

	for i := range batch {
		a := batch[i]
		err := w.store.Insert(ctx, &a)
		if err == nil {
			continue
		}
		raw, mErr := json.Marshal(a)
		if mErr != nil {
			w.log.Error().Err(mErr).Str("session_id", a.SessionID.String()).Msg("Unencodable attempt dropped")
			continue
		}
		if repository.IsPermanent(err) {
			w.log.Error().Err(err).
				Str("session_id", a.SessionID.String()).
				RawJSON("attempt", raw).
				Msg("Attempt rejected by database, dropped")
			continue
		}

		w.log.Error().Err(err).Str("session_id", a.SessionID.String()).Msg("Insert failed, requeueing")
		if err := w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err(); err != nil {
			w.log.Error().Err(err).Str("session_id", a.SessionID.String()).Msg("Requeue failed, attempt dropped")
		}
	}
}
