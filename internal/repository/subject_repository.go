package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, description) VALUES ($1, NULLIF($2, '')) RETURNING id, created_at, updated_at`,
		s.Name, s.Description).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

func (r *SubjectRepository) GetAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM subjects ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// GetOrCreate returns the id of the subject named name, inserting it if needed.
func (r *SubjectRepository) GetOrCreate(ctx context.Context, name, description string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, description) VALUES ($1, NULLIF($2, ''))
		 ON CONFLICT (name) DO UPDATE SET description = COALESCE(EXCLUDED.description, subjects.description)
		 RETURNING id`, name, description).Scan(&id)
	return id, mapError(err)
}

func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE subjects SET name = $1, description = NULLIF($2, ''), updated_at = NOW() WHERE id = $3`,
		s.Name, s.Description, s.ID))
}

func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id))
}
