package quiz_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/quiz/quiztest"
)

func TestLedger_LastWriteWins(t *testing.T) {
	l := quiz.NewLedger(quiztest.ThreeQuestions())

	require.NoError(t, l.Record(101, 2))
	require.NoError(t, l.Record(101, 1))

	assert.Equal(t, map[int]quiz.Option{101: 1}, l.Snapshot())
	assert.Equal(t, 1, l.Answered())
}

func TestLedger_RejectsInvalid(t *testing.T) {
	l := quiz.NewLedger(quiztest.ThreeQuestions())
	require.NoError(t, l.Record(102, 3))

	for _, tc := range []struct {
		qid  int
		slot quiz.Option
	}{
		{102, 0},
		{102, 5},
		{102, -1},
		{999, 1},
	} {
		err := l.Record(tc.qid, tc.slot)
		var invalid *quiz.InvalidAnswerError
		require.True(t, errors.As(err, &invalid), "qid=%d slot=%d", tc.qid, tc.slot)
		assert.Equal(t, tc.qid, invalid.QuestionID)
	}

	assert.Equal(t, map[int]quiz.Option{102: 3}, l.Snapshot())
}

func TestLedger_SnapshotIsDetached(t *testing.T) {
	l := quiz.NewLedger(quiztest.ThreeQuestions())
	require.NoError(t, l.Record(101, 1))

	snap := l.Snapshot()
	require.NoError(t, l.Record(102, 2))
	snap[103] = 4

	assert.Len(t, snap, 2)
	assert.Equal(t, map[int]quiz.Option{101: 1, 102: 2}, l.Snapshot())
}

func TestOptionFromIndex(t *testing.T) {
	assert.Equal(t, quiz.Option(1), quiz.OptionFromIndex(0))
	assert.Equal(t, 3, quiz.Option(4).Index())
	assert.False(t, quiz.OptionFromIndex(4).Valid())
}
