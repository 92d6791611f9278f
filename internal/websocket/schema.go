package websocket

import "github.com/medjourney/simulados-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// Request is every client message; fields unused by an action stay empty.
type Request struct {
	Action Action `json:"action"`
	// autosave
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
	// submit
	Confirmed bool `json:"confirmado,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSession         Event = "session"
	EventTick            Event = "tick"
	EventSuccess         Event = "success"
	EventConfirmRequired Event = "confirm_required"
	EventGraded          Event = "graded"
	EventError           Event = "error"
	EventPong            Event = "pong"
)

// SessionEvent is sent once after connecting.
type SessionEvent struct {
	Event            Event           `json:"event"`
	Exam             *model.Exam     `json:"simulado"`
	Answers          model.AnswerMap `json:"respostas"`
	RemainingMinutes int             `json:"tempoRestante"`
	Answered         int             `json:"respondidas"`
	Total            int             `json:"total"`
}

// TickEvent reports the countdown once per second.
type TickEvent struct {
	Event            Event   `json:"event"`
	RemainingSeconds int     `json:"segundosRestantes"`
	RemainingMinutes float64 `json:"tempoRestante"`
}

// AutosaveEvent acknowledges a stored answer.
type AutosaveEvent struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
	QID    string `json:"q_id"`
}

// ConfirmRequiredEvent asks the user to confirm finalizing with blanks.
type ConfirmRequiredEvent struct {
	Event    Event `json:"event"`
	Answered int   `json:"respondidas"`
	Total    int   `json:"total"`
}

// GradedEvent carries the result; the connection closes after it.
type GradedEvent struct {
	Event   Event                `json:"event"`
	Status  string               `json:"status"`
	Trigger string               `json:"motivo"`
	Result  *model.ResultSummary `json:"resultado"`
}

type ErrorEvent struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongEvent struct {
	Event Event `json:"event"`
}
