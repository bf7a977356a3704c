package models

import "github.com/google/uuid"

// API error envelope

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WSMessage is the envelope pushed to a student's websocket connections via
// Redis pub/sub.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// EvaluationProgress reports how far the sequential evaluation loop inside
// an end call has advanced.
type EvaluationProgress struct {
	StudentSessionID uuid.UUID `json:"student_session_id"`
	Evaluated        int       `json:"evaluated"`
	Total            int       `json:"total"`
	Step             string    `json:"step"`
}
