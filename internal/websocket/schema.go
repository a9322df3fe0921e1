package websocket

import "github.com/knowlympics/knowlympics-backend/internal/quiz"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionGoTo     Action = "goto"
	ActionSubmit   Action = "submit"
	ActionState    Action = "state"
	ActionPing     Action = "ping"
)

// RequestPayload is every client message. Fields are used per action.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID int    `json:"question_id,omitempty"`
	// Option is the 1-based slot; OptionIndex is the 0-based alternative.
	Option      int  `json:"option,omitempty"`
	OptionIndex *int `json:"option_index,omitempty"`
	Index       int  `json:"index,omitempty"`
}

// Slot resolves the selected option from either field.
func (r RequestPayload) Slot() quiz.Option {
	if r.OptionIndex != nil {
		return quiz.OptionFromIndex(*r.OptionIndex)
	}
	return quiz.Option(r.Option)
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

type StateResponse struct {
	Event   Event     `json:"event"`
	Session quiz.View `json:"session"`
}

type TickResponse struct {
	Event    Event `json:"event"`
	TimeLeft int   `json:"time_left"`
}

type SubmittedResponse struct {
	Event        Event        `json:"event"`
	Trigger      quiz.Trigger `json:"trigger"`
	Result       quiz.Result  `json:"result"`
	PersistError string       `json:"persist_error,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
