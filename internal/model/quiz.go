package model

import (
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
)

// Quiz is a timed assessment as stored in the catalog.
type Quiz struct {
	ID              int               `json:"id"`
	ChapterID       int               `json:"chapter_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Difficulty      quiz.Difficulty   `json:"difficulty,omitempty"`
	DurationMinutes int               `json:"duration_minutes"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	QuestionCount   int               `json:"question_count"`
	Availability    quiz.Availability `json:"availability,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Engine converts the stored quiz into the engine's metadata.
func (q Quiz) Engine() quiz.Quiz {
	return quiz.Quiz{
		ID:              q.ID,
		Name:            q.Name,
		Description:     q.Description,
		DurationMinutes: q.DurationMinutes,
		Difficulty:      q.Difficulty,
		StartTime:       q.StartTime,
		EndTime:         q.EndTime,
	}
}

// QuizRequest is the payload for creating or updating a quiz.
type QuizRequest struct {
	ChapterID       int        `json:"chapter_id" binding:"required,min=1"`
	Name            string     `json:"name" binding:"required,min=2,max=80"`
	Description     string     `json:"description" binding:"omitempty,max=255"`
	Difficulty      string     `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	StartTime       *time.Time `json:"start_time" binding:"omitempty"`
	EndTime         *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
}
