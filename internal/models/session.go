package models

import (
	"time"

	"github.com/google/uuid"
)

// Session types
const (
	SessionTypeExam      = "EXAM"
	SessionTypePractice  = "PRACTICE"
	SessionTypeInterview = "INTERVIEW"
)

// Session statuses
const (
	SessionStatusCreated = "created"
	SessionStatusReady   = "ready"
)

type Session struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"session_type"`
	Status          string     `json:"status"`
	PasswordHash    *string    `json:"-"`
	MaterialID      *uuid.UUID `json:"material_id"`
	CourseName      *string    `json:"course_name"`
	DifficultyLevel string     `json:"difficulty_level"`
	TimeLimit       *int       `json:"time_limit"`
	CreatedAt       time.Time  `json:"created_at"`
}

// InterviewConfig is the 1:1 companion row for INTERVIEW sessions.
type InterviewConfig struct {
	SessionID    uuid.UUID `json:"session_id"`
	CVURL        *string   `json:"cv_url"`
	JDURL        *string   `json:"jd_url"`
	Position     string    `json:"position"`
	NumQuestions *int      `json:"num_questions"`
	TimeLimit    *int      `json:"time_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudentSession is one student's participation record within a Session.
// Its lifecycle state is derived from data presence: no answers yet means
// answering, score_total set means ended.
type StudentSession struct {
	ID                uuid.UUID `json:"student_session_id"`
	SessionID         uuid.UUID `json:"session_id"`
	StudentID         uuid.UUID `json:"student_id"`
	ScoreTotal        *float64  `json:"score_total"`
	AIOverallFeedback *string   `json:"ai_overall_feedback"`
	JoinTime          time.Time `json:"join_time"`
}

type JoinRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Password  string    `json:"password"`
}

type JoinResult struct {
	StudentSessionID uuid.UUID `json:"student_session_id"`
	SessionID        uuid.UUID `json:"session_id"`
	Message          string    `json:"message"`
}

type StartResult struct {
	StudentSessionID uuid.UUID `json:"student_session_id"`
	SessionStarted   bool      `json:"session_started"`
	TotalQuestions   int       `json:"total_questions"`
	TimeLimit        *int      `json:"time_limit"`
}

type NextQuestion struct {
	Completed      bool      `json:"completed"`
	QuestionID     uuid.UUID `json:"question_id,omitempty"`
	Question       string    `json:"question,omitempty"`
	QuestionNumber int       `json:"question_number,omitempty"`
	TotalQuestions int       `json:"total_questions,omitempty"`
	Difficulty     string    `json:"difficulty,omitempty"`
	Message        string    `json:"message,omitempty"`
}

type SubmitAnswerRequest struct {
	QuestionID          *uuid.UUID `json:"question_id"`
	InterviewQuestionID *uuid.UUID `json:"question_interview_id"`
	Answer              string     `json:"answer"`
}

type SubmitAnswerResult struct {
	AnswerID              uuid.UUID `json:"answer_id"`
	AnsweredCount         int       `json:"answered_count"`
	TotalQuestions        int       `json:"total_questions"`
	NextQuestionAvailable bool      `json:"next_question_available"`
	Message               string    `json:"message"`
}

type EndResult struct {
	StudentSessionID  uuid.UUID `json:"student_session_id"`
	ScoreTotal        float64   `json:"score_total"`
	AIOverallFeedback string    `json:"ai_overall_feedback"`
	EvaluatedCount    int       `json:"evaluated_count"`
	TotalAnswers      int       `json:"total_answers"`
	CompletedAt       time.Time `json:"completed_at"`
	Warnings          []string  `json:"warnings,omitempty"`
}

type SessionResult struct {
	StudentSessionID  uuid.UUID         `json:"student_session_id"`
	SessionID         uuid.UUID         `json:"session_id"`
	SessionName       string            `json:"session_name"`
	SessionType       string            `json:"session_type"`
	ScoreTotal        *float64          `json:"score_total"`
	AIOverallFeedback *string           `json:"ai_overall_feedback"`
	Answers           []FormattedAnswer `json:"answers"`
	JoinTime          time.Time         `json:"join_time"`
}

type HistoryEntry struct {
	StudentSessionID uuid.UUID `json:"student_session_id"`
	SessionID        uuid.UUID `json:"session_id"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	CourseName       string    `json:"course_name"`
	ScoreTotal       *float64  `json:"score_total"`
	JoinTime         time.Time `json:"join_time"`
}
