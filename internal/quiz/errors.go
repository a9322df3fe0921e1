package quiz

import (
	"errors"
	"fmt"
	"time"
)

// Session errors.
var (
	ErrEmptyQuestionSet    = errors.New("quiz has no questions")
	ErrSessionSubmitted    = errors.New("session already submitted")
	ErrSessionNotSubmitted = errors.New("session is still in progress")
	ErrIndexOutOfRange     = errors.New("question index out of range")
	ErrSessionNotFound     = errors.New("session not found")
	ErrQuizNotFound        = errors.New("quiz not found")
)

// AvailabilityReason names the window boundary a start request violated.
type AvailabilityReason string

const (
	ReasonNotYetOpen AvailabilityReason = "NOT_YET_OPEN"
	ReasonExpired    AvailabilityReason = "EXPIRED"
)

// AvailabilityError is returned when a session is requested outside the
// quiz availability window. Boundary is the violated start or end time.
type AvailabilityError struct {
	QuizID   int
	Reason   AvailabilityReason
	Boundary time.Time
}

func (e *AvailabilityError) Error() string {
	switch e.Reason {
	case ReasonNotYetOpen:
		return fmt.Sprintf("quiz %d opens at %s", e.QuizID, e.Boundary.Format(time.RFC3339))
	default:
		return fmt.Sprintf("quiz %d closed at %s", e.QuizID, e.Boundary.Format(time.RFC3339))
	}
}

// InvalidAnswerError rejects an answer without touching the ledger.
type InvalidAnswerError struct {
	QuestionID int
	Slot       Option
	Reason     string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer %d for question %d: %s", e.Slot, e.QuestionID, e.Reason)
}

// SubmissionTransportError wraps a failed attempt persistence call. The
// local Result is still valid when this is returned.
type SubmissionTransportError struct {
	Err error
}

func (e *SubmissionTransportError) Error() string {
	return "submit attempt: " + e.Err.Error()
}

func (e *SubmissionTransportError) Unwrap() error {
	return e.Err
}
