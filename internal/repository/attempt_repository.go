package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

// AttemptRepository handles attempts table access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// InsertBatch stores attempts in one statement. Attempts whose session_id
// already exists are skipped, so redelivered queue items are harmless.
func (r *AttemptRepository) InsertBatch(ctx context.Context, batch []model.Attempt) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	sessionIDs := make([]uuid.UUID, n)
	userIDs := make([]int, n)
	quizIDs := make([]int, n)
	scores := make([]int, n)
	corrects := make([]int, n)
	totals := make([]int, n)
	spent := make([]int, n)
	answers := make([]string, n)
	statuses := make([]string, n)
	triggers := make([]string, n)
	createdAts := make([]time.Time, n)

	for i, a := range batch {
		raw, err := json.Marshal(a.SubmittedAnswers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		sessionIDs[i] = a.SessionID
		userIDs[i] = a.UserID
		quizIDs[i] = a.QuizID
		scores[i] = a.Score
		corrects[i] = a.CorrectAnswers
		totals[i] = a.TotalQuestions
		spent[i] = a.TimeSpent
		answers[i] = string(raw)
		statuses[i] = a.Status
		triggers[i] = a.Trigger
		createdAts[i] = a.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (session_id, user_id, quiz_id, score, correct_answers, total_questions,
		                      time_spent, submitted_answers, status, submit_trigger, created_at)
		SELECT u.session_id, u.user_id, u.quiz_id, u.score, u.correct, u.total,
		       u.spent, u.answers::jsonb, u.status, u.submit_trigger, u.created_at
		FROM UNNEST(
			$1::uuid[], $2::int[], $3::int[], $4::int[], $5::int[], $6::int[],
			$7::int[], $8::text[], $9::text[], $10::text[], $11::timestamptz[]
		) AS u (session_id, user_id, quiz_id, score, correct, total, spent, answers, status, submit_trigger, created_at)
		ON CONFLICT (session_id) DO NOTHING`,
		sessionIDs, userIDs, quizIDs, scores, corrects, totals, spent, answers, statuses, triggers, createdAts,
	)
	return mapError(err)
}

// Insert stores one attempt, ignoring duplicates of session_id.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.Attempt) error {
	raw, err := json.Marshal(a.SubmittedAnswers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO attempts (session_id, user_id, quiz_id, score, correct_answers, total_questions,
		                      time_spent, submitted_answers, status, submit_trigger, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING`,
		a.SessionID, a.UserID, a.QuizID, a.Score, a.CorrectAnswers, a.TotalQuestions,
		a.TimeSpent, string(raw), a.Status, a.Trigger, a.CreatedAt,
	)
	return mapError(err)
}

const attemptSelect = `
	SELECT a.id, a.session_id, a.user_id, a.quiz_id, q.name, s.name,
	       a.score, a.correct_answers, a.total_questions, a.time_spent,
	       a.submitted_answers, a.status, a.submit_trigger, a.created_at
	FROM attempts a
	JOIN quizzes q ON q.id = a.quiz_id
	JOIN chapters c ON c.id = q.chapter_id
	JOIN subjects s ON s.id = c.subject_id`

func scanAttempt(row interface{ Scan(...any) error }, a *model.Attempt) error {
	var raw []byte
	if err := row.Scan(&a.ID, &a.SessionID, &a.UserID, &a.QuizID, &a.QuizName, &a.SubjectName,
		&a.Score, &a.CorrectAnswers, &a.TotalQuestions, &a.TimeSpent,
		&raw, &a.Status, &a.Trigger, &a.CreatedAt); err != nil {
		return err
	}
	a.SubmittedAnswers = map[string]int{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a.SubmittedAnswers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	return nil
}

func buildAttemptWhere(f model.AttemptFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UserID > 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if f.QuizID > 0 {
		args = append(args, f.QuizID)
		conds = append(conds, fmt.Sprintf("a.quiz_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of attempts, newest first, plus the total count.
func (r *AttemptRepository) List(ctx context.Context, f model.AttemptFilter) ([]model.Attempt, int, error) {
	where, args := buildAttemptWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attempts a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	query := attemptSelect + where +
		fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := scanAttempt(rows, &a); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ForEach streams every attempt matching f, oldest first, into fn.
func (r *AttemptRepository) ForEach(ctx context.Context, f model.AttemptFilter, fn func(model.Attempt) error) error {
	where, args := buildAttemptWhere(f)
	rows, err := r.pool.Query(ctx, attemptSelect+where+" ORDER BY a.created_at ASC, a.id ASC", args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Attempt
		if err := scanAttempt(rows, &a); err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Stats returns the attempt count, average score and pass rate (0-100) of
// a user, or of everyone when userID is 0.
func (r *AttemptRepository) Stats(ctx context.Context, userID int) (count int, avg, passRate float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(score), 0)::float8,
		        COALESCE(AVG(CASE WHEN status = 'Passed' THEN 100.0 ELSE 0 END), 0)::float8
		 FROM attempts
		 WHERE ($1 = 0 OR user_id = $1)`, userID,
	).Scan(&count, &avg, &passRate)
	return
}
