package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/poll"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	ErrExportNotFound = errors.New("export job not found")
	ErrExportNotReady = errors.New("export is not ready")
)

// AttemptSource streams stored attempts.
type AttemptSource interface {
	ForEach(ctx context.Context, f model.AttemptFilter, fn func(model.Attempt) error) error
}

var exportHeader = []string{
	"attempt_id", "session_id", "user_id", "quiz_id", "quiz_name", "subject_name",
	"score", "correct_answers", "total_questions", "time_spent_seconds",
	"status", "trigger", "submitted_at",
}

// ExportService runs asynchronous CSV exports of attempt history. Job state
// lives in a Redis hash and the finished file under its own key; both expire
// after the configured TTL.
type ExportService struct {
	attempts AttemptSource
	rdb      *redis.Client
	ttl      time.Duration
	log      zerolog.Logger
}

func NewExportService(attempts AttemptSource, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ExportService {
	return &ExportService{
		attempts: attempts,
		rdb:      rdb,
		ttl:      ttl,
		log:      log.With().Str("component", "export_service").Logger(),
	}
}

// Start queues an export of userID's attempts. userID 0 exports everyone.
func (s *ExportService) Start(ctx context.Context, userID int) (*model.ExportJob, error) {
	job := &model.ExportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    model.ExportPending,
		CreatedAt: time.Now().UTC(),
	}
	key := config.CacheKey.ExportJobKey(job.ID)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", job.UserID,
			"status", string(job.Status),
			"rows", 0,
			"created_at", job.CreatedAt.Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, s.ttl)
		pipe.RPush(ctx, config.WorkerKey.ExportJobsQueue, job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("queue export: %w", err)
	}
	return job, nil
}

// Status returns the job if the requester may see it.
func (s *ExportService) Status(ctx context.Context, jobID string, requesterID int, admin bool) (*model.ExportJob, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !admin && job.UserID != requesterID {
		return nil, ErrExportNotFound
	}
	return job, nil
}

// Download returns the CSV body of a READY job.
func (s *ExportService) Download(ctx context.Context, jobID string, requesterID int, admin bool) ([]byte, error) {
	job, err := s.Status(ctx, jobID, requesterID, admin)
	if err != nil {
		return nil, err
	}
	if job.Status != model.ExportReady {
		return nil, ErrExportNotReady
	}
	body, err := s.rdb.Get(ctx, config.CacheKey.ExportFileKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExportNotFound
	}
	return body, err
}

// Build renders the CSV for a queued job. Failures are recorded on the job
// and also returned.
func (s *ExportService) Build(ctx context.Context, jobID string) error {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return err
	}
	key := config.CacheKey.ExportJobKey(jobID)
	if err := s.rdb.HSet(ctx, key, "status", string(model.ExportRunning)).Err(); err != nil {
		return err
	}

	body, rows, err := s.render(ctx, job.UserID)
	if err != nil {
		s.fail(ctx, jobID, err)
		return err
	}

	finished := time.Now().UTC()
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.ExportFileKey(jobID), body, s.ttl)
		pipe.HSet(ctx, key,
			"status", string(model.ExportReady),
			"rows", rows,
			"finished_at", finished.Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store export: %w", err)
	}

	s.log.Info().Str("job_id", jobID).Int("rows", rows).Msg("Export ready")
	return nil
}

// WaitReady polls until the job reaches a terminal state.
func (s *ExportService) WaitReady(ctx context.Context, jobID string, interval, timeout time.Duration) (*model.ExportJob, error) {
	var job *model.ExportJob
	err := poll.Until(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		var err error
		job, err = s.load(ctx, jobID)
		if err != nil {
			return false, err
		}
		return job.Status.Done(), nil
	})
	if err != nil {
		return nil, err
	}
	if job.Status == model.ExportFailed {
		return job, fmt.Errorf("export failed: %s", job.Error)
	}
	return job, nil
}

func (s *ExportService) render(ctx context.Context, userID int) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, err
	}

	rows := 0
	err := s.attempts.ForEach(ctx, model.AttemptFilter{UserID: userID}, func(a model.Attempt) error {
		rows++
		return w.Write([]string{
			strconv.Itoa(a.ID),
			a.SessionID.String(),
			strconv.Itoa(a.UserID),
			strconv.Itoa(a.QuizID),
			a.QuizName,
			a.SubjectName,
			strconv.Itoa(a.Score),
			strconv.Itoa(a.CorrectAnswers),
			strconv.Itoa(a.TotalQuestions),
			strconv.Itoa(a.TimeSpent),
			a.Status,
			a.Trigger,
			a.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, 0, fmt.Errorf("read attempts: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), rows, nil
}

func (s *ExportService) fail(ctx context.Context, jobID string, cause error) {
	err := s.rdb.HSet(ctx, config.CacheKey.ExportJobKey(jobID),
		"status", string(model.ExportFailed),
		"error", cause.Error(),
		"finished_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to mark export failed")
	}
}

func (s *ExportService) load(ctx context.Context, jobID string) (*model.ExportJob, error) {
	fields, err := s.rdb.HGetAll(ctx, config.CacheKey.ExportJobKey(jobID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrExportNotFound
	}

	job := &model.ExportJob{
		ID:     jobID,
		Status: model.ExportStatus(fields["status"]),
		Error:  fields["error"],
	}
	job.UserID, _ = strconv.Atoi(fields["user_id"])
	job.Rows, _ = strconv.Atoi(fields["rows"])
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	if v := fields["finished_at"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			job.FinishedAt = &t
		}
	}
	return job, nil
}
