package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

// AnalyticsRepository runs the aggregate queries behind dashboards and reports.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Window bounds an aggregate to [From, To). Zero times are unbounded.
type Window struct {
	UserID int
	From   time.Time
	To     time.Time
}

func (w Window) args() []any {
	var from, to *time.Time
	if !w.From.IsZero() {
		from = &w.From
	}
	if !w.To.IsZero() {
		to = &w.To
	}
	return []any{w.UserID, from, to}
}

const windowFilter = `($1 = 0 OR a.user_id = $1)
	AND ($2::timestamptz IS NULL OR a.created_at >= $2)
	AND ($3::timestamptz IS NULL OR a.created_at < $3)`

// GetPlatformCounts retrieves the headline counts for the admin dashboard.
func (r *AnalyticsRepository) GetPlatformCounts(ctx context.Context) (model.PlatformCounts, error) {
	var c model.PlatformCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM chapters),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM attempts)`,
	).Scan(&c.Users, &c.Subjects, &c.Chapters, &c.Quizzes, &c.Questions, &c.Attempts)
	return c, err
}

// ScoreStats aggregates attempts inside w.
type ScoreStats struct {
	Attempts     int
	AverageScore float64
	PassRate     float64
	TotalTime    int
}

func (r *AnalyticsRepository) GetScoreStats(ctx context.Context, w Window) (ScoreStats, error) {
	var s ScoreStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(a.score), 0)::float8,
		        COALESCE(AVG(CASE WHEN a.status = 'Passed' THEN 100.0 ELSE 0 END), 0)::float8,
		        COALESCE(SUM(a.time_spent), 0)::int
		 FROM attempts a
		 WHERE `+windowFilter, w.args()...,
	).Scan(&s.Attempts, &s.AverageScore, &s.PassRate, &s.TotalTime)
	return s, err
}

// GetSubjectPerformance returns per-subject averages, best first.
func (r *AnalyticsRepository) GetSubjectPerformance(ctx context.Context, w Window) ([]model.SubjectPerformance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, COUNT(*), AVG(a.score)::float8
		 FROM attempts a
		 JOIN quizzes q ON q.id = a.quiz_id
		 JOIN chapters c ON c.id = q.chapter_id
		 JOIN subjects s ON s.id = c.subject_id
		 WHERE `+windowFilter+`
		 GROUP BY s.id, s.name
		 ORDER BY AVG(a.score) DESC, s.name ASC`, w.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubjectPerformance
	for rows.Next() {
		var p model.SubjectPerformance
		if err := rows.Scan(&p.SubjectID, &p.SubjectName, &p.Attempts, &p.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetMonthlyActivity returns attempts per calendar month inside w, oldest first.
func (r *AnalyticsRepository) GetMonthlyActivity(ctx context.Context, w Window) ([]model.MonthlyActivity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT TO_CHAR(DATE_TRUNC('month', a.created_at), 'YYYY-MM'), COUNT(*), AVG(a.score)::float8
		 FROM attempts a
		 WHERE `+windowFilter+`
		 GROUP BY 1
		 ORDER BY 1 ASC`, w.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MonthlyActivity
	for rows.Next() {
		var m model.MonthlyActivity
		if err := rows.Scan(&m.Month, &m.Attempts, &m.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTopQuizzes ranks quizzes by number of attempts.
func (r *AnalyticsRepository) GetTopQuizzes(ctx context.Context, limit int) ([]model.QuizPopularity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.name, COUNT(a.id), COALESCE(AVG(a.score), 0)::float8
		 FROM quizzes q
		 JOIN attempts a ON a.quiz_id = q.id
		 GROUP BY q.id, q.name
		 ORDER BY COUNT(a.id) DESC, q.name ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QuizPopularity
	for rows.Next() {
		var p model.QuizPopularity
		if err := rows.Scan(&p.QuizID, &p.QuizName, &p.Attempts, &p.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
