package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

type ChapterRepository struct {
	pool *pgxpool.Pool
}

func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{pool: pool}
}

func (r *ChapterRepository) Create(ctx context.Context, c *model.Chapter) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chapters (subject_id, name, description) VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING id, created_at, updated_at`,
		c.SubjectID, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// ListBySubject returns chapters with their quiz counts.
func (r *ChapterRepository) ListBySubject(ctx context.Context, subjectID int) ([]model.Chapter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.subject_id, c.name, COALESCE(c.description, ''),
		        (SELECT COUNT(*) FROM quizzes q WHERE q.chapter_id = c.id),
		        c.created_at, c.updated_at
		 FROM chapters c
		 WHERE c.subject_id = $1
		 ORDER BY c.name ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.Name, &c.Description, &c.QuizCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// GetOrCreate returns the id of the named chapter in subjectID, inserting it if needed.
func (r *ChapterRepository) GetOrCreate(ctx context.Context, subjectID int, name, description string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chapters (subject_id, name, description) VALUES ($1, $2, NULLIF($3, ''))
		 ON CONFLICT (subject_id, name) DO UPDATE SET updated_at = NOW()
		 RETURNING id`, subjectID, name, description).Scan(&id)
	return id, mapError(err)
}

func (r *ChapterRepository) Update(ctx context.Context, c *model.Chapter) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE chapters SET subject_id = $1, name = $2, description = NULLIF($3, ''), updated_at = NOW() WHERE id = $4`,
		c.SubjectID, c.Name, c.Description, c.ID))
}

func (r *ChapterRepository) Delete(ctx context.Context, id int) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id))
}
