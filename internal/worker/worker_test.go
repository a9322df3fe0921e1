package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type fakeStore struct {
	mu        sync.Mutex
	batchErr  error
	failOne   uuid.UUID
	rejectOne uuid.UUID
	stored    []model.Attempt
	batches   int
	singleErr error
}

func (s *fakeStore) InsertBatch(_ context.Context, batch []model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchErr != nil {
		return s.batchErr
	}
	s.batches++
	s.stored = append(s.stored, batch...)
	return nil
}

func (s *fakeStore) Insert(_ context.Context, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.SessionID == s.failOne {
		return errors.New("connection reset")
	}
	if a.SessionID == s.rejectOne {
		return repository.ErrInUse
	}
	s.stored = append(s.stored, *a)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func pushAttempt(t *testing.T, mr *miniredis.Miniredis, a model.Attempt) {
	t.Helper()
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	_, err = mr.RPush(config.WorkerKey.PersistAttemptsQueue, string(raw))
	require.NoError(t, err)
}

func TestAttemptWorker_BatchesQueue(t *testing.T) {
	mr, rdb := newRedis(t)
	store := &fakeStore{}
	w := NewAttemptWorker(store, rdb, zerolog.Nop())
	w.batchSize = 2
	w.batchTimeout = 10 * time.Millisecond

	for i := 0; i < 3; i++ {
		pushAttempt(t, mr, model.Attempt{SessionID: uuid.New(), UserID: 1, QuizID: 1, Score: 100})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return store.count() == 3 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, store.batches, 2)
}

func TestAttemptWorker_FallbackRequeuesFailures(t *testing.T) {
	mr, rdb := newRedis(t)
	bad := uuid.New()
	store := &fakeStore{batchErr: errors.New("bulk failed"), failOne: bad}
	w := NewAttemptWorker(store, rdb, zerolog.Nop())

	w.flushSafe(context.Background(), []model.Attempt{
		{SessionID: uuid.New(), UserID: 1},
		{SessionID: bad, UserID: 2},
	})

	assert.Equal(t, 1, store.count())
	queued, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var back model.Attempt
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &back))
	assert.Equal(t, bad, back.SessionID)
}

func TestAttemptWorker_DropsRejectedRows(t *testing.T) {
	mr, rdb := newRedis(t)
	rejected, flaky := uuid.New(), uuid.New()
	store := &fakeStore{batchErr: errors.New("bulk failed"), rejectOne: rejected, failOne: flaky}
	w := NewAttemptWorker(store, rdb, zerolog.Nop())

	w.flushSafe(context.Background(), []model.Attempt{
		{SessionID: uuid.New(), UserID: 1},
		{SessionID: rejected, UserID: 2, QuizID: 99},
		{SessionID: flaky, UserID: 3},
	})

	assert.Equal(t, 1, store.count())
	queued, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var back model.Attempt
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &back))
	assert.Equal(t, flaky, back.SessionID)
}

func TestAttemptWorker_FlushesOnShutdown(t *testing.T) {
	mr, rdb := newRedis(t)
	store := &fakeStore{}
	w := NewAttemptWorker(store, rdb, zerolog.Nop())
	w.batchTimeout = time.Hour

	pushAttempt(t, mr, model.Attempt{SessionID: uuid.New(), UserID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool {
		n, _ := rdb.LLen(context.Background(), config.WorkerKey.PersistAttemptsQueue).Result()
		return n == 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, store.count())
}

type fakeBuilder struct {
	mu  sync.Mutex
	ids []string
}

func (b *fakeBuilder) Build(_ context.Context, jobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, jobID)
	return nil
}

func (b *fakeBuilder) built() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ids...)
}

func TestExportWorker_BuildsQueuedJobs(t *testing.T) {
	mr, rdb := newRedis(t)
	b := &fakeBuilder{}
	w := NewExportWorker(b, rdb, zerolog.Nop())

	_, err := mr.RPush(config.WorkerKey.ExportJobsQueue, "job-1", "job-2")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return len(b.built()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"job-1", "job-2"}, b.built())
}

type fakeReminder struct {
	mu     sync.Mutex
	daily  []time.Time
	report []time.Time
}

func (f *fakeReminder) SendDailyReminders(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daily = append(f.daily, now)
	return 1, nil
}

func (f *fakeReminder) SendMonthlyReports(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.report = append(f.report, now)
	return 0, errors.New("report store down")
}

func (f *fakeReminder) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.daily), len(f.report)
}

func TestReminderWorker_RunsAtStartAndOnTick(t *testing.T) {
	f := &fakeReminder{}
	w := NewReminderWorker(f, 20*time.Millisecond, zerolog.Nop())
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// A failing monthly run does not stop the daily one.
	assert.Eventually(t, func() bool {
		d, r := f.calls()
		return d >= 2 && r >= 2
	}, 2*time.Second, 5*time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, fixed, f.daily[0])
}

type countingSweeper struct {
	mu        sync.Mutex
	retention time.Duration
	calls     int
}

func (s *countingSweeper) Sweep(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retention = retention
	s.calls++
	return 1
}

func TestSessionJanitor_Sweeps(t *testing.T) {
	s := &countingSweeper{}
	j := NewSessionJanitor(s, 10*time.Millisecond, 30*time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Start(ctx)
	}()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.calls >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 30*time.Minute, s.retention)
}
