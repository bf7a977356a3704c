package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StudentAnswer struct {
	ID               uuid.UUID `json:"answer_id"`
	StudentSessionID uuid.UUID `json:"student_session_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	AnswerText       string    `json:"answer_text"`
	AIScore          *float64  `json:"ai_score"`
	AIFeedback       *string   `json:"ai_feedback"`
	LecturerScore    *float64  `json:"lecturer_score"`
	LecturerFeedback *string   `json:"lecturer_feedback"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// InterviewAnswer stores the score as a structured map (six criteria plus
// overall_score) instead of a scalar.
type InterviewAnswer struct {
	ID               uuid.UUID       `json:"answer_id"`
	StudentSessionID uuid.UUID       `json:"student_session_id"`
	QuestionID       uuid.UUID       `json:"question_interview_id"`
	AnswerText       string          `json:"answer_text"`
	AIScore          json.RawMessage `json:"ai_score"`
	AIFeedback       *string         `json:"ai_feedback"`
	LecturerScore    *float64        `json:"lecturer_score"`
	LecturerFeedback *string         `json:"lecturer_feedback"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type FormattedAnswer struct {
	AnswerID         uuid.UUID       `json:"answer_id"`
	QuestionID       uuid.UUID       `json:"question_id"`
	Question         string          `json:"question"`
	Answer           string          `json:"answer"`
	AIScore          json.RawMessage `json:"ai_score"`
	AIFeedback       *string         `json:"ai_feedback"`
	LecturerScore    *float64        `json:"lecturer_score"`
	LecturerFeedback *string         `json:"lecturer_feedback"`
}
