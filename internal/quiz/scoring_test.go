package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/quiz/quiztest"
)

func TestRoundPercent(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{1, 200, 1},
		{0, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, quiz.RoundPercent(tc.correct, tc.total), "%d/%d", tc.correct, tc.total)
	}
}

func TestClassify_TiePasses(t *testing.T) {
	assert.Equal(t, quiz.LabelPassed, quiz.Classify(60, 60))
	assert.Equal(t, quiz.LabelFailed, quiz.Classify(59, 60))
	assert.Equal(t, quiz.LabelPassed, quiz.Classify(100, 60))
}

func TestScore_UnansweredCountsAsIncorrect(t *testing.T) {
	r := quiz.Score(quiztest.ThreeQuestions(), map[int]quiz.Option{}, 60, 60, 60)

	assert.Equal(t, 0, r.CorrectCount)
	assert.Equal(t, 3, r.IncorrectCount)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, quiz.LabelFailed, r.Status)
	require.Len(t, r.Breakdown, 3)
	for _, o := range r.Breakdown {
		assert.Equal(t, quiz.Option(0), o.Selected)
		assert.False(t, o.IsCorrect)
	}
}

func TestScore_Breakdown(t *testing.T) {
	answers := map[int]quiz.Option{101: 1, 102: 4}
	r := quiz.Score(quiztest.ThreeQuestions(), answers, 60, 300, 120)

	assert.Equal(t, 1, r.CorrectCount)
	assert.Equal(t, 2, r.IncorrectCount)
	assert.Equal(t, 33, r.Score)
	assert.Equal(t, 180, r.TimeSpentSeconds)
	assert.Equal(t, r.TotalQuestions, r.CorrectCount+r.IncorrectCount)

	assert.True(t, r.Breakdown[0].IsCorrect)
	assert.Equal(t, quiz.Option(4), r.Breakdown[1].Selected)
	assert.Equal(t, quiz.Option(2), r.Breakdown[1].Correct)
	assert.False(t, r.Breakdown[2].IsCorrect)
}

func TestScore_TimeSpentClamped(t *testing.T) {
	qs := quiztest.ThreeQuestions()
	assert.Equal(t, 60, quiz.Score(qs, nil, 60, 60, -5).TimeSpentSeconds)
	assert.Equal(t, 0, quiz.Score(qs, nil, 60, 60, 90).TimeSpentSeconds)
}

func TestScore_ThresholdIsConfigurable(t *testing.T) {
	answers := map[int]quiz.Option{101: 1, 102: 2}
	qs := quiztest.ThreeQuestions()

	assert.Equal(t, quiz.LabelPassed, quiz.Score(qs, answers, 60, 60, 0).Status)
	assert.Equal(t, quiz.LabelFailed, quiz.Score(qs, answers, 70, 60, 0).Status)
}
