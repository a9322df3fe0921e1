package service

import (
	"context"
	"errors"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidMonth is returned for report months not in YYYY-MM form.
var ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")

const (
	summaryMonths  = 6
	recentAttempts = 5
	topQuizzes     = 5
	monthLayout    = "2006-01"
)

// AnalyticsStore is the aggregate query surface behind reports.
type AnalyticsStore interface {
	GetPlatformCounts(ctx context.Context) (model.PlatformCounts, error)
	GetScoreStats(ctx context.Context, w repository.Window) (repository.ScoreStats, error)
	GetSubjectPerformance(ctx context.Context, w repository.Window) ([]model.SubjectPerformance, error)
	GetMonthlyActivity(ctx context.Context, w repository.Window) ([]model.MonthlyActivity, error)
	GetTopQuizzes(ctx context.Context, limit int) ([]model.QuizPopularity, error)
}

// AttemptLister pages through stored attempts.
type AttemptLister interface {
	List(ctx context.Context, f model.AttemptFilter) ([]model.Attempt, int, error)
}

// ActiveCounter reports how many learners are mid-session.
type ActiveCounter interface {
	ActiveLearners(ctx context.Context) (int64, error)
}

// AnalyticsService builds the learner summary, monthly reports and the admin
// dashboard. Independent aggregates run concurrently.
type AnalyticsService struct {
	store    AnalyticsStore
	attempts AttemptLister
	active   ActiveCounter
	now      func() time.Time
}

func NewAnalyticsService(store AnalyticsStore, attempts AttemptLister, active ActiveCounter) *AnalyticsService {
	return &AnalyticsService{store: store, attempts: attempts, active: active, now: time.Now}
}

// UserSummary gathers the learner dashboard.
func (s *AnalyticsService) UserSummary(ctx context.Context, userID int) (*model.UserSummary, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	all := repository.Window{UserID: userID}

	var (
		out   model.UserSummary
		stats repository.ScoreStats
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats, err = s.store.GetScoreStats(gctx, all)
		return err
	})
	g.Go(func() error {
		m, err := s.store.GetScoreStats(gctx, repository.Window{UserID: userID, From: monthStart})
		out.QuizzesThisMonth = m.Attempts
		return err
	})
	g.Go(func() (err error) {
		out.SubjectPerformance, err = s.store.GetSubjectPerformance(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		from := monthStart.AddDate(0, -(summaryMonths - 1), 0)
		out.MonthlyActivity, err = s.store.GetMonthlyActivity(gctx, repository.Window{UserID: userID, From: from})
		return err
	})
	g.Go(func() (err error) {
		out.RecentQuizzes, _, err = s.attempts.List(gctx, model.AttemptFilter{UserID: userID, Page: 1, PerPage: recentAttempts})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalQuizzes = stats.Attempts
	out.AverageScore = stats.AverageScore
	if len(out.SubjectPerformance) > 0 {
		best := out.SubjectPerformance[0]
		out.BestSubject = &best
	}
	return &out, nil
}

// MonthlyReport summarises a learner's calendar month given as YYYY-MM.
func (s *AnalyticsService) MonthlyReport(ctx context.Context, userID int, month string) (*model.MonthlyReport, error) {
	start, err := time.ParseInLocation(monthLayout, month, s.now().Location())
	if err != nil {
		return nil, ErrInvalidMonth
	}
	w := repository.Window{UserID: userID, From: start, To: start.AddDate(0, 1, 0)}

	report := model.MonthlyReport{UserID: userID, Month: month}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st, err := s.store.GetScoreStats(gctx, w)
		report.TotalQuizzes = st.Attempts
		report.AverageScore = st.AverageScore
		report.PassRate = st.PassRate
		report.TotalTimeSeconds = st.TotalTime
		return err
	})
	g.Go(func() (err error) {
		report.SubjectPerformance, err = s.store.GetSubjectPerformance(gctx, w)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}

// AdminDashboard gathers platform-wide figures.
func (s *AnalyticsService) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	var d model.AdminDashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Counts, err = s.store.GetPlatformCounts(gctx)
		return err
	})
	g.Go(func() error {
		st, err := s.store.GetScoreStats(gctx, repository.Window{})
		d.AverageScore = st.AverageScore
		d.PassRate = st.PassRate
		return err
	})
	g.Go(func() (err error) {
		d.SubjectPerformance, err = s.store.GetSubjectPerformance(gctx, repository.Window{})
		return err
	})
	g.Go(func() (err error) {
		d.TopQuizzes, err = s.store.GetTopQuizzes(gctx, topQuizzes)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveLearners, err = s.active.ActiveLearners(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
