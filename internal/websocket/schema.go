package websocket

import "github.com/seshat-edu/seshat-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionPing   Action = "ping"
)

// RequestPayload is every client message. Only answer uses the other fields.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID int    `json:"question_id,omitempty"`
	UserAnswer string `json:"user_answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventQuestion Event = "question"
	EventResult   Event = "result"
	EventFinished Event = "finished"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// QuestionResponse carries the next question, without its answer.
type QuestionResponse struct {
	Event    Event              `json:"event"`
	Index    int                `json:"index"`
	Total    int                `json:"total"`
	Question model.QuestionView `json:"question"`
}

// ResultResponse reports the verdict on the last answer.
type ResultResponse struct {
	Event  Event                    `json:"event"`
	Result model.VerifyAnswerResult `json:"result"`
}

// FinishedResponse closes a practice round.
type FinishedResponse struct {
	Event   Event `json:"event"`
	Correct int   `json:"correct"`
	Total   int   `json:"total"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
