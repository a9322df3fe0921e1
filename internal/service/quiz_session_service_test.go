package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/quiz/quiztest"
)

func newSessionService(t *testing.T) (*QuizSessionService, *quiztest.Clock) {
	t.Helper()
	_, rdb := newRedis(t)
	clock := quiztest.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	catalog := &quiztest.Catalog{
		Quizzes:   map[int]quiz.Quiz{1: {ID: 1, Name: "Basics", DurationMinutes: 5}},
		Questions: map[int][]quiz.Question{1: quiztest.ThreeQuestions()},
	}
	engine := quiz.NewEngine(catalog, catalog, NewAttemptSubmitter(rdb), quiz.WithClock(clock))
	return NewQuizSessionService(engine, zerolog.Nop()), clock
}

func TestQuizSessionService_Lifecycle(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)

	n, err := svc.ActiveLearners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	view, err := svc.Answer(7, sess.ID(), 101, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Answered)

	view, err = svc.Navigate(7, sess.ID(), NavNext, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentIndex)

	view, err = svc.Navigate(7, sess.ID(), NavGoTo, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CurrentIndex)

	_, err = svc.Navigate(7, sess.ID(), NavGoTo, 3)
	assert.ErrorIs(t, err, quiz.ErrIndexOutOfRange)

	res, err := svc.Submit(ctx, 7, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, 33, res.Score)
	assert.Equal(t, quiz.LabelFailed, res.Status)

	n, err = svc.ActiveLearners(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Answer(7, sess.ID(), 102, 2)
	assert.ErrorIs(t, err, quiz.ErrSessionSubmitted)
}

func TestQuizSessionService_Ownership(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)

	_, err = svc.Get(8, sess.ID())
	assert.ErrorIs(t, err, ErrNotSessionOwner)
	_, err = svc.Submit(ctx, 8, sess.ID())
	assert.ErrorIs(t, err, ErrNotSessionOwner)

	_, err = svc.Get(7, uuid.New())
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)
}

func TestQuizSessionService_StartResumes(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)
	second, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
}

func TestQuizSessionService_ResubmitAfterRedisRecovers(t *testing.T) {
	mr, rdb := newRedis(t)
	catalog := &quiztest.Catalog{
		Quizzes:   map[int]quiz.Quiz{1: {ID: 1, Name: "Basics", DurationMinutes: 5}},
		Questions: map[int][]quiz.Question{1: quiztest.ThreeQuestions()},
	}
	engine := quiz.NewEngine(catalog, catalog, NewAttemptSubmitter(rdb),
		quiz.WithClock(quiztest.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))))
	svc := NewQuizSessionService(engine, zerolog.Nop())
	ctx := context.Background()

	sess, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)

	mr.SetError("ERR injected failure")
	res, err := svc.Submit(ctx, 7, sess.ID())
	var transport *quiz.SubmissionTransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, 3, res.TotalQuestions)

	mr.SetError("")
	require.NoError(t, svc.Resubmit(ctx, 7, sess.ID()))

	items, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestQuizSessionService_ActiveLearnersCountsDistinct(t *testing.T) {
	_, rdb := newRedis(t)
	catalog := &quiztest.Catalog{
		Quizzes: map[int]quiz.Quiz{
			1: {ID: 1, Name: "Basics", DurationMinutes: 5},
			2: {ID: 2, Name: "Advanced", DurationMinutes: 5},
		},
		Questions: map[int][]quiz.Question{1: quiztest.ThreeQuestions(), 2: quiztest.ThreeQuestions()},
	}
	engine := quiz.NewEngine(catalog, catalog, NewAttemptSubmitter(rdb),
		quiz.WithClock(quiztest.NewClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))))
	svc := NewQuizSessionService(engine, zerolog.Nop())
	ctx := context.Background()

	basics, err := svc.Start(ctx, 7, 1)
	require.NoError(t, err)
	advanced, err := svc.Start(ctx, 7, 2)
	require.NoError(t, err)
	_, err = svc.Start(ctx, 8, 1)
	require.NoError(t, err)

	n, err := svc.ActiveLearners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Learner 7 still has the second quiz running.
	_, err = svc.Submit(ctx, 7, basics.ID())
	require.NoError(t, err)
	n, err = svc.ActiveLearners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.Submit(ctx, 7, advanced.ID())
	require.NoError(t, err)
	n, err = svc.ActiveLearners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
