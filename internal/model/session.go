package model

import "github.com/knowlympics/knowlympics-backend/internal/quiz"

// AnswerRequest records a selection. Clients send either the 1-based
// option or the 0-based option_index.
type AnswerRequest struct {
	QuestionID  int  `json:"question_id" binding:"required,min=1"`
	Option      *int `json:"option" binding:"omitempty,min=1,max=4"`
	OptionIndex *int `json:"option_index" binding:"omitempty,min=0,max=3"`
}

// MissingSlot reports whether neither selection field was sent.
func (r AnswerRequest) MissingSlot() bool {
	return r.Option == nil && r.OptionIndex == nil
}

// Slot resolves the selection to a 1-based option.
func (r AnswerRequest) Slot() quiz.Option {
	if r.Option != nil {
		return quiz.Option(*r.Option)
	}
	return quiz.OptionFromIndex(*r.OptionIndex)
}

// GoToRequest jumps to a 0-based question index.
type GoToRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}
