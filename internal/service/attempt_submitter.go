package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/redis/go-redis/v9"
)

// AttemptSubmitter implements quiz.Submitter by queueing scored attempts in
// Redis for the attempt worker.
type AttemptSubmitter struct {
	rdb *redis.Client
}

func NewAttemptSubmitter(rdb *redis.Client) *AttemptSubmitter {
	return &AttemptSubmitter{rdb: rdb}
}

// AttemptRecord converts an engine attempt into the persisted row.
func AttemptRecord(a quiz.Attempt) model.Attempt {
	answers := make(map[string]int, len(a.Answers))
	for qid, slot := range a.Answers {
		answers[strconv.Itoa(qid)] = int(slot)
	}
	return model.Attempt{
		SessionID:        a.SessionID,
		UserID:           a.LearnerID,
		QuizID:           a.QuizID,
		Score:            a.Score,
		CorrectAnswers:   a.CorrectCount,
		TotalQuestions:   a.TotalQuestions,
		TimeSpent:        a.TimeSpentSeconds,
		SubmittedAnswers: answers,
		Status:           a.Status,
		Trigger:          string(a.Trigger),
		CreatedAt:        a.SubmittedAt,
	}
}

func (s *AttemptSubmitter) SubmitAttempt(ctx context.Context, a quiz.Attempt) error {
	raw, err := json.Marshal(AttemptRecord(a))
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err(); err != nil {
		return fmt.Errorf("queue attempt: %w", err)
	}
	return nil
}
