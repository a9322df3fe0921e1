package model

import (
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
)

// Question is one multiple-choice item. CorrectOption is the 1-based slot.
type Question struct {
	ID            int       `json:"id"`
	QuizID        int       `json:"quiz_id"`
	Position      int       `json:"position"`
	Prompt        string    `json:"prompt"`
	Options       [4]string `json:"options"`
	CorrectOption int       `json:"correct_option"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Engine converts the stored question into the engine's form.
func (q Question) Engine() quiz.Question {
	return quiz.Question{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: q.Options,
		Correct: quiz.Option(q.CorrectOption),
	}
}

// QuestionRequest is the payload for creating or updating a question.
type QuestionRequest struct {
	Position      int       `json:"position" binding:"omitempty,min=0"`
	Prompt        string    `json:"prompt" binding:"required,min=1,max=2000"`
	Options       [4]string `json:"options" binding:"required,dive,required,max=255"`
	CorrectOption int       `json:"correct_option" binding:"required,min=1,max=4"`
}
