package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
)

type fakeAnalytics struct {
	mu      sync.Mutex
	windows []repository.Window
	err     error
}

func (f *fakeAnalytics) record(w repository.Window) {
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
}

func (f *fakeAnalytics) GetPlatformCounts(context.Context) (model.PlatformCounts, error) {
	return model.PlatformCounts{Users: 10, Subjects: 2, Quizzes: 5, Questions: 40, Attempts: 30}, f.err
}

func (f *fakeAnalytics) GetScoreStats(_ context.Context, w repository.Window) (repository.ScoreStats, error) {
	f.record(w)
	if !w.From.IsZero() {
		return repository.ScoreStats{Attempts: 2, AverageScore: 80, PassRate: 100, TotalTime: 300}, nil
	}
	return repository.ScoreStats{Attempts: 12, AverageScore: 64.5, PassRate: 58.3, TotalTime: 4000}, nil
}

func (f *fakeAnalytics) GetSubjectPerformance(_ context.Context, w repository.Window) ([]model.SubjectPerformance, error) {
	f.record(w)
	return []model.SubjectPerformance{
		{SubjectID: 2, SubjectName: "Science", Attempts: 4, AverageScore: 81},
		{SubjectID: 1, SubjectName: "Math", Attempts: 8, AverageScore: 56},
	}, nil
}

func (f *fakeAnalytics) GetMonthlyActivity(_ context.Context, w repository.Window) ([]model.MonthlyActivity, error) {
	f.record(w)
	return []model.MonthlyActivity{{Month: "2026-02", Attempts: 10}, {Month: "2026-03", Attempts: 2}}, nil
}

func (f *fakeAnalytics) GetTopQuizzes(_ context.Context, limit int) ([]model.QuizPopularity, error) {
	return []model.QuizPopularity{{QuizID: 3, QuizName: "Fractions", Attempts: limit}}, nil
}

type fakeLister struct{ filter model.AttemptFilter }

func (f *fakeLister) List(_ context.Context, filter model.AttemptFilter) ([]model.Attempt, int, error) {
	f.filter = filter
	return []model.Attempt{{ID: 9, Score: 100}}, 1, nil
}

type fixedActive int64

func (a fixedActive) ActiveLearners(context.Context) (int64, error) { return int64(a), nil }

func TestAnalyticsService_UserSummary(t *testing.T) {
	store := &fakeAnalytics{}
	lister := &fakeLister{}
	svc := NewAnalyticsService(store, lister, fixedActive(0))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	sum, err := svc.UserSummary(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 12, sum.TotalQuizzes)
	assert.Equal(t, 64.5, sum.AverageScore)
	assert.Equal(t, 2, sum.QuizzesThisMonth)
	require.NotNil(t, sum.BestSubject)
	assert.Equal(t, "Science", sum.BestSubject.SubjectName)
	assert.Len(t, sum.MonthlyActivity, 2)
	assert.Len(t, sum.RecentQuizzes, 1)
	assert.Equal(t, model.AttemptFilter{UserID: 7, Page: 1, PerPage: 5}, lister.filter)

	var froms []time.Time
	for _, w := range store.windows {
		assert.Equal(t, 7, w.UserID)
		if !w.From.IsZero() {
			froms = append(froms, w.From)
		}
	}
	assert.ElementsMatch(t, []time.Time{
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}, froms)
}

func TestAnalyticsService_MonthlyReport(t *testing.T) {
	store := &fakeAnalytics{}
	svc := NewAnalyticsService(store, &fakeLister{}, fixedActive(0))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	r, err := svc.MonthlyReport(context.Background(), 7, "2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02", r.Month)
	assert.Equal(t, 2, r.TotalQuizzes)
	assert.Equal(t, 300, r.TotalTimeSeconds)
	assert.Equal(t, 100.0, r.PassRate)
	assert.Len(t, r.SubjectPerformance, 2)

	for _, w := range store.windows {
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), w.From)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.To)
	}

	_, err = svc.MonthlyReport(context.Background(), 7, "February")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestAnalyticsService_AdminDashboard(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalytics{}, &fakeLister{}, fixedActive(4))

	d, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, d.Counts.Users)
	assert.Equal(t, 58.3, d.PassRate)
	assert.Equal(t, int64(4), d.ActiveLearners)
	require.Len(t, d.TopQuizzes, 1)
	assert.Equal(t, 5, d.TopQuizzes[0].Attempts)
}

func TestAnalyticsService_AdminDashboardError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewAnalyticsService(&fakeAnalytics{err: boom}, &fakeLister{}, fixedActive(0))

	_, err := svc.AdminDashboard(context.Background())
	assert.ErrorIs(t, err, boom)
}
