package websocket

// Event names pushed on the session stream.
const (
	EventClock     = "clock"
	EventSaved     = "saved"
	EventGraded    = "graded"
	EventFinalized = "finalized"
	EventPong      = "pong"
	EventError     = "error"
)

// Actions a client may send on the session stream.
const (
	ActionSave   = "save"
	ActionSubmit = "submit"
	ActionPing   = "ping"
)

// Request is one client frame on the session stream. QuestionID and Answer
// are only read for the save action.
type Request struct {
	Action     string `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// SavedResponse acknowledges one autosaved answer.
type SavedResponse struct {
	Event      string `json:"event"`
	QuestionID string `json:"question_id"`
}

// GradedResponse carries the result of a submit action. The stream closes
// after it.
type GradedResponse struct {
	Event      string  `json:"event"`
	Status     string  `json:"status"`
	RawScore   float64 `json:"raw_score"`
	Percentage float64 `json:"percentage"`
	Pass       bool    `json:"pass"`
}

// PongResponse answers a client ping.
type PongResponse struct {
	Event string `json:"event"`
}

// ClockResponse is the periodic countdown tick.
type ClockResponse struct {
	Event            string `json:"event"`
	RemainingSeconds int    `json:"remaining_seconds"`
	ServerTime       string `json:"server_time"`
}

// FinalizedResponse is sent once when the session reaches a terminal state.
// The stream closes after it.
type FinalizedResponse struct {
	Event  string `json:"event"`
	Status string `json:"status"`
}

// ErrorResponse is sent before an abnormal close.
type ErrorResponse struct {
	Event string `json:"event"`
	Error string `json:"error"`
}
