package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/poll"
)

type fakeAttemptSource struct {
	attempts []model.Attempt
	err      error
	filters  []model.AttemptFilter
}

func (f *fakeAttemptSource) ForEach(_ context.Context, filter model.AttemptFilter, fn func(model.Attempt) error) error {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return f.err
	}
	for _, a := range f.attempts {
		if filter.UserID != 0 && a.UserID != filter.UserID {
			continue
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func exportFixture() *fakeAttemptSource {
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	return &fakeAttemptSource{attempts: []model.Attempt{
		{ID: 1, SessionID: uuid.New(), UserID: 7, QuizID: 3, QuizName: "Fractions, part 1", SubjectName: "Math",
			Score: 67, CorrectAnswers: 2, TotalQuestions: 3, TimeSpent: 95, Status: "Passed", Trigger: "manual", CreatedAt: at},
		{ID: 2, SessionID: uuid.New(), UserID: 8, QuizID: 3, QuizName: "Fractions, part 1", SubjectName: "Math",
			Score: 0, CorrectAnswers: 0, TotalQuestions: 3, TimeSpent: 600, Status: "Failed", Trigger: "timeout", CreatedAt: at},
	}}
}

func TestExportService_StartBuildDownload(t *testing.T) {
	mr, rdb := newRedis(t)
	src := exportFixture()
	svc := NewExportService(src, rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	job, err := svc.Start(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ExportPending, job.Status)

	queued, err := mr.List(config.WorkerKey.ExportJobsQueue)
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, queued)

	_, err = svc.Download(ctx, job.ID, 7, false)
	assert.ErrorIs(t, err, ErrExportNotReady)

	require.NoError(t, svc.Build(ctx, job.ID))

	got, err := svc.Status(ctx, job.ID, 7, false)
	require.NoError(t, err)
	assert.Equal(t, model.ExportReady, got.Status)
	assert.Equal(t, 1, got.Rows)
	require.NotNil(t, got.FinishedAt)

	body, err := svc.Download(ctx, job.ID, 7, false)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "Fractions, part 1", records[1][4])
	assert.Equal(t, "67", records[1][6])
	assert.Equal(t, "2026-02-10T09:30:00Z", records[1][12])

	assert.True(t, mr.TTL(config.CacheKey.ExportFileKey(job.ID)) > 0)
}

func TestExportService_AdminExportsEveryone(t *testing.T) {
	_, rdb := newRedis(t)
	src := exportFixture()
	svc := NewExportService(src, rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	job, err := svc.Start(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Build(ctx, job.ID))

	_, err = svc.Status(ctx, job.ID, 7, false)
	assert.ErrorIs(t, err, ErrExportNotFound)

	got, err := svc.Status(ctx, job.ID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rows)
}

func TestExportService_OtherLearnerCannotSeeJob(t *testing.T) {
	_, rdb := newRedis(t)
	svc := NewExportService(exportFixture(), rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	job, err := svc.Start(ctx, 7)
	require.NoError(t, err)

	_, err = svc.Status(ctx, job.ID, 8, false)
	assert.ErrorIs(t, err, ErrExportNotFound)
	_, err = svc.Status(ctx, "missing", 7, false)
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestExportService_BuildFailureIsRecorded(t *testing.T) {
	_, rdb := newRedis(t)
	src := &fakeAttemptSource{err: errors.New("db gone")}
	svc := NewExportService(src, rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	job, err := svc.Start(ctx, 7)
	require.NoError(t, err)
	require.Error(t, svc.Build(ctx, job.ID))

	got, err := svc.WaitReady(ctx, job.ID, time.Millisecond, time.Second)
	require.Error(t, err)
	assert.Equal(t, model.ExportFailed, got.Status)
	assert.Contains(t, got.Error, "db gone")
}

func TestExportService_WaitReady(t *testing.T) {
	_, rdb := newRedis(t)
	svc := NewExportService(exportFixture(), rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	job, err := svc.Start(ctx, 7)
	require.NoError(t, err)

	_, err = svc.WaitReady(ctx, job.ID, time.Millisecond, 20*time.Millisecond)
	assert.ErrorIs(t, err, poll.ErrTimeout)

	go func() { _ = svc.Build(context.Background(), job.ID) }()

	got, err := svc.WaitReady(ctx, job.ID, time.Millisecond, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.ExportReady, got.Status)
}
