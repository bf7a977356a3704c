package models

import (
	"time"

	"github.com/google/uuid"
)

// Question statuses. Students only ever see approved or answers_approved
// questions; interview questions are auto-approved at generation time.
const (
	QuestionStatusDraft           = "draft"
	QuestionStatusApproved        = "approved"
	QuestionStatusAnswersApproved = "answers_approved"
)

type Question struct {
	ID              uuid.UUID `json:"question_id"`
	SessionID       uuid.UUID `json:"session_id"`
	Content         string    `json:"content"`
	Keywords        string    `json:"keywords"`
	QuestionType    string    `json:"question_type"`
	Status          string    `json:"status"`
	ReferenceAnswer *string   `json:"reference_answer,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// InterviewQuestion carries extra behavioral metadata and an explicit
// presentation order.
type InterviewQuestion struct {
	ID              uuid.UUID `json:"question_interview_id"`
	SessionID       uuid.UUID `json:"session_id"`
	Content         string    `json:"content"`
	Keywords        string    `json:"keywords"`
	QuestionType    string    `json:"question_type"`
	Category        string    `json:"category"`
	Purpose         string    `json:"purpose"`
	JobTitle        string    `json:"job_title"`
	QuestionIndex   int       `json:"question_index"`
	Status          string    `json:"status"`
	ReferenceAnswer *string   `json:"reference_answer,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
