package model

// SubjectPerformance is the average score of a user (or everyone) in a subject.
type SubjectPerformance struct {
	SubjectID    int     `json:"subject_id"`
	SubjectName  string  `json:"subject_name"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

// MonthlyActivity counts attempts in a calendar month (YYYY-MM).
type MonthlyActivity struct {
	Month        string  `json:"month"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

// UserSummary is the learner dashboard.
type UserSummary struct {
	TotalQuizzes       int                  `json:"total_quizzes"`
	AverageScore       float64              `json:"average_score"`
	QuizzesThisMonth   int                  `json:"quizzes_this_month"`
	BestSubject        *SubjectPerformance  `json:"best_subject"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
	MonthlyActivity    []MonthlyActivity    `json:"monthly_activity"`
	RecentQuizzes      []Attempt            `json:"recent_quizzes"`
}

// MonthlyReport summarises one user's month.
type MonthlyReport struct {
	UserID             int                  `json:"user_id"`
	Month              string               `json:"month"`
	TotalQuizzes       int                  `json:"total_quizzes"`
	AverageScore       float64              `json:"average_score"`
	TotalTimeSeconds   int                  `json:"total_time_seconds"`
	PassRate           float64              `json:"pass_rate"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
}

// QuizPopularity ranks quizzes by number of attempts.
type QuizPopularity struct {
	QuizID       int     `json:"quiz_id"`
	QuizName     string  `json:"quiz_name"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

// PlatformCounts are the headline numbers of the admin dashboard.
type PlatformCounts struct {
	Users     int `json:"users"`
	Subjects  int `json:"subjects"`
	Chapters  int `json:"chapters"`
	Quizzes   int `json:"quizzes"`
	Questions int `json:"questions"`
	Attempts  int `json:"attempts"`
}

// AdminDashboard is the admin analytics payload.
type AdminDashboard struct {
	Counts             PlatformCounts       `json:"counts"`
	AverageScore       float64              `json:"average_score"`
	PassRate           float64              `json:"pass_rate"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
	TopQuizzes         []QuizPopularity     `json:"top_quizzes"`
	ActiveLearners     int64                `json:"active_learners"`
}
