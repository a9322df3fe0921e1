package quiz

// DefaultPassThreshold is the minimum score labelled Passed.
const DefaultPassThreshold = 60

// RoundPercent returns round(correct/total*100) rounding halves up, in
// integer arithmetic so 12.5 always becomes 13.
func RoundPercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

// Classify labels a score against the pass threshold. A tie passes.
func Classify(score, threshold int) string {
	if score >= threshold {
		return LabelPassed
	}
	return LabelFailed
}

// Score grades answers against questions. Unanswered questions are
// incorrect. timeLeft is clamped so time spent stays within the budget.
func Score(questions []Question, answers map[int]Option, threshold, totalSeconds, timeLeft int) Result {
	breakdown := make([]Outcome, 0, len(questions))
	correct := 0
	for _, q := range questions {
		sel := answers[q.ID]
		ok := sel.Valid() && sel == q.Correct
		if ok {
			correct++
		}
		breakdown = append(breakdown, Outcome{
			QuestionID: q.ID,
			Selected:   sel,
			Correct:    q.Correct,
			IsCorrect:  ok,
		})
	}

	total := len(questions)
	score := RoundPercent(correct, total)

	return Result{
		Score:            score,
		TotalQuestions:   total,
		CorrectCount:     correct,
		IncorrectCount:   total - correct,
		TimeSpentSeconds: clamp(totalSeconds-timeLeft, 0, totalSeconds),
		Status:           Classify(score, threshold),
		PassThreshold:    threshold,
		Breakdown:        breakdown,
	}
}
