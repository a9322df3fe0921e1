package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

// QuizRepository handles quizzes table access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizSelect = `
	SELECT q.id, q.chapter_id, q.name, COALESCE(q.description, ''), COALESCE(q.difficulty, ''),
	       q.duration_minutes, q.start_time, q.end_time,
	       (SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id),
	       q.created_at, q.updated_at
	FROM quizzes q`

func scanQuiz(row interface{ Scan(...any) error }, q *model.Quiz) error {
	return row.Scan(&q.ID, &q.ChapterID, &q.Name, &q.Description, &q.Difficulty,
		&q.DurationMinutes, &q.StartTime, &q.EndTime, &q.QuestionCount, &q.CreatedAt, &q.UpdatedAt)
}

func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (chapter_id, name, description, difficulty, duration_minutes, start_time, end_time)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		q.ChapterID, q.Name, q.Description, string(q.Difficulty), q.DurationMinutes, q.StartTime, q.EndTime,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return mapError(err)
}

// GetByID returns ErrNotFound for unknown ids.
func (r *QuizRepository) GetByID(ctx context.Context, id int) (*model.Quiz, error) {
	var q model.Quiz
	if err := scanQuiz(r.pool.QueryRow(ctx, quizSelect+` WHERE q.id = $1`, id), &q); err != nil {
		return nil, mapError(err)
	}
	return &q, nil
}

func (r *QuizRepository) ListByChapter(ctx context.Context, chapterID int) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx, quizSelect+` WHERE q.chapter_id = $1 ORDER BY q.start_time NULLS FIRST, q.name`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := scanQuiz(rows, &q); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Upsert inserts a quiz or updates the one with the same name. Used by seeding.
func (r *QuizRepository) Upsert(ctx context.Context, q *model.Quiz) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (chapter_id, name, description, difficulty, duration_minutes, start_time, end_time)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		     chapter_id = EXCLUDED.chapter_id,
		     description = EXCLUDED.description,
		     difficulty = EXCLUDED.difficulty,
		     duration_minutes = EXCLUDED.duration_minutes,
		     start_time = EXCLUDED.start_time,
		     end_time = EXCLUDED.end_time,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		q.ChapterID, q.Name, q.Description, string(q.Difficulty), q.DurationMinutes, q.StartTime, q.EndTime,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return mapError(err)
}

func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET chapter_id = $1, name = $2, description = NULLIF($3, ''), difficulty = NULLIF($4, ''),
		     duration_minutes = $5, start_time = $6, end_time = $7, updated_at = NOW()
		 WHERE id = $8`,
		q.ChapterID, q.Name, q.Description, string(q.Difficulty), q.DurationMinutes, q.StartTime, q.EndTime, q.ID))
}

func (r *QuizRepository) Delete(ctx context.Context, id int) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id))
}
