package model

import "time"

// ExportStatus is the lifecycle of an asynchronous CSV export.
type ExportStatus string

const (
	ExportPending ExportStatus = "PENDING"
	ExportRunning ExportStatus = "RUNNING"
	ExportReady   ExportStatus = "READY"
	ExportFailed  ExportStatus = "FAILED"
)

// Done reports whether the job reached a terminal state.
func (s ExportStatus) Done() bool {
	return s == ExportReady || s == ExportFailed
}

// ExportJob tracks one CSV export. UserID 0 exports every learner.
type ExportJob struct {
	ID         string       `json:"job_id"`
	UserID     int          `json:"user_id"`
	Status     ExportStatus `json:"status"`
	Rows       int          `json:"rows"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

// Notification is queued for the external mailer.
type Notification struct {
	Kind    string         `json:"kind"`
	UserID  int            `json:"user_id"`
	Email   string         `json:"email"`
	Subject string         `json:"subject"`
	Data    map[string]any `json:"data,omitempty"`
}
