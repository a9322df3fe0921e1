package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

// QuestionRepository handles questions table access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, quiz_id, position, prompt, option1, option2, option3, option4, correct_option, created_at, updated_at`

func scanQuestion(row interface{ Scan(...any) error }, q *model.Question) error {
	return row.Scan(&q.ID, &q.QuizID, &q.Position, &q.Prompt,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3],
		&q.CorrectOption, &q.CreatedAt, &q.UpdatedAt)
}

// ListByQuiz returns the questions of a quiz in presentation order.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE quiz_id = $1 ORDER BY position ASC, id ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	var q model.Question
	if err := scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id), &q); err != nil {
		return nil, mapError(err)
	}
	return &q, nil
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, position, prompt, option1, option2, option3, option4, correct_option)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		q.QuizID, q.Position, q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectOption,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return mapError(err)
}

func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE questions
		 SET position = $1, prompt = $2, option1 = $3, option2 = $4, option3 = $5, option4 = $6,
		     correct_option = $7, updated_at = NOW()
		 WHERE id = $8`,
		q.Position, q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectOption, q.ID))
}

func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id))
}

// ReplaceAll swaps a quiz's question set inside one transaction.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, quizID int, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}

	batch := &pgx.Batch{}
	for i, q := range questions {
		batch.Queue(
			`INSERT INTO questions (quiz_id, position, prompt, option1, option2, option3, option4, correct_option)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			quizID, i, q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectOption,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert questions: %w", mapError(err))
	}

	return tx.Commit(ctx)
}
