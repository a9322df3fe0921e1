package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
)

func TestAttemptSubmitter_QueuesAttempt(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	a := quiz.Attempt{
		SessionID:        uuid.New(),
		LearnerID:        7,
		QuizID:           3,
		Answers:          map[int]quiz.Option{101: 1, 102: 4},
		TimeSpentSeconds: 42,
		Score:            50,
		CorrectCount:     1,
		TotalQuestions:   2,
		Status:           quiz.LabelFailed,
		Trigger:          quiz.TriggerTimeout,
		SubmittedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewAttemptSubmitter(rdb).SubmitAttempt(ctx, a))

	items, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got model.Attempt
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, a.SessionID, got.SessionID)
	assert.Equal(t, 7, got.UserID)
	assert.Equal(t, 42, got.TimeSpent)
	assert.Equal(t, map[string]int{"101": 1, "102": 4}, got.SubmittedAnswers)
	assert.Equal(t, "timeout", got.Trigger)
}

func TestAttemptSubmitter_RedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	err := NewAttemptSubmitter(rdb).SubmitAttempt(context.Background(), quiz.Attempt{SessionID: uuid.New()})
	assert.Error(t, err)
}
