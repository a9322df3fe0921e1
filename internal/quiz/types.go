package quiz

import (
	"time"

	"github.com/google/uuid"
)

// NumOptions is the fixed number of choices every question offers.
const NumOptions = 4

// Option is a 1-based answer slot (1..NumOptions). Zero means unanswered.
type Option int

// Valid reports whether o names one of the offered slots.
func (o Option) Valid() bool {
	return o >= 1 && o <= NumOptions
}

// OptionFromIndex converts a zero-based client index into a slot.
func OptionFromIndex(i int) Option {
	return Option(i + 1)
}

// Index returns the zero-based position of the slot.
func (o Option) Index() int {
	return int(o) - 1
}

// Difficulty grades a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Quiz is the read-only metadata the engine needs to run a session.
type Quiz struct {
	ID              int
	Name            string
	Description     string
	DurationMinutes int
	Difficulty      Difficulty
	StartTime       *time.Time
	EndTime         *time.Time
}

// TotalSeconds is the full countdown budget of the quiz.
func (q Quiz) TotalSeconds() int {
	return q.DurationMinutes * 60
}

// Question is one item of a quiz. Correct is never exposed to learners.
type Question struct {
	ID      int
	Prompt  string
	Options [NumOptions]string
	Correct Option
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
)

// Trigger records what caused the submission.
type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerTimeout Trigger = "timeout"
)

// Result labels.
const (
	LabelPassed = "Passed"
	LabelFailed = "Failed"
)

// Outcome is the graded state of one question.
type Outcome struct {
	QuestionID int    `json:"question_id"`
	Selected   Option `json:"selected"`
	Correct    Option `json:"correct"`
	IsCorrect  bool   `json:"is_correct"`
}

// Result is the scoring snapshot produced once per session.
type Result struct {
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectCount     int       `json:"correct_count"`
	IncorrectCount   int       `json:"incorrect_count"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Status           string    `json:"status"`
	PassThreshold    int       `json:"pass_threshold"`
	Breakdown        []Outcome `json:"breakdown"`
}

// Passed reports whether the result cleared the threshold.
func (r Result) Passed() bool {
	return r.Status == LabelPassed
}

// Attempt is what the engine hands to the Submitter after scoring.
type Attempt struct {
	SessionID        uuid.UUID      `json:"session_id"`
	LearnerID        int            `json:"learner_id"`
	QuizID           int            `json:"quiz_id"`
	Answers          map[int]Option `json:"answers"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	Score            int            `json:"score"`
	CorrectCount     int            `json:"correct_count"`
	TotalQuestions   int            `json:"total_questions"`
	Status           string         `json:"status"`
	Trigger          Trigger        `json:"trigger"`
	SubmittedAt      time.Time      `json:"submitted_at"`
}
