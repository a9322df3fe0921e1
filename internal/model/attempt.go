package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is a persisted, scored quiz session.
type Attempt struct {
	ID               int            `json:"id"`
	SessionID        uuid.UUID      `json:"session_id"`
	UserID           int            `json:"user_id"`
	QuizID           int            `json:"quiz_id"`
	QuizName         string         `json:"quiz_name,omitempty"`
	SubjectName      string         `json:"subject_name,omitempty"`
	Score            int            `json:"score"`
	CorrectAnswers   int            `json:"correct_answers"`
	TotalQuestions   int            `json:"total_questions"`
	TimeSpent        int            `json:"time_spent"`
	SubmittedAnswers map[string]int `json:"submitted_answers"`
	Status           string         `json:"status"`
	Trigger          string         `json:"trigger"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AttemptFilter narrows attempt listings. Zero values mean no filter.
type AttemptFilter struct {
	UserID  int
	QuizID  int
	Page    int
	PerPage int
}

// AttemptHistory is a page of attempts with aggregate figures.
type AttemptHistory struct {
	Attempts     []Attempt `json:"attempts"`
	AverageScore float64   `json:"average_score"`
	PassRate     float64   `json:"pass_rate"`
	Total        int       `json:"total"`
}

// AttemptQuery is the query string of the history listing.
type AttemptQuery struct {
	QuizID  int `form:"quiz_id" binding:"omitempty,min=1"`
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// Filter applies defaults and scopes the query to one user.
func (q AttemptQuery) Filter(userID int) AttemptFilter {
	f := AttemptFilter{UserID: userID, QuizID: q.QuizID, Page: q.Page, PerPage: q.PerPage}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PerPage == 0 {
		f.PerPage = 20
	}
	return f
}
