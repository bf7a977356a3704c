package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type InterviewAnswerRepo struct {
	pool *pgxpool.Pool
}

func NewInterviewAnswerRepo(pool *pgxpool.Pool) *InterviewAnswerRepo {
	return &InterviewAnswerRepo{pool: pool}
}

func (r *InterviewAnswerRepo) Create(ctx context.Context, a *models.InterviewAnswer) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `INSERT INTO interview_answers (id, student_session_id, question_id, answer_text)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, a.ID, a.StudentSessionID, a.QuestionID, a.AnswerText).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *InterviewAnswerRepo) FindByQuestion(ctx context.Context, studentSessionID, questionID uuid.UUID) (*models.InterviewAnswer, error) {
	a := &models.InterviewAnswer{}
	query := `SELECT id, student_session_id, question_id, answer_text, ai_score, ai_feedback, lecturer_score, lecturer_feedback, created_at, updated_at
		FROM interview_answers WHERE student_session_id = $1 AND question_id = $2`

	err := r.pool.QueryRow(ctx, query, studentSessionID, questionID).Scan(
		&a.ID, &a.StudentSessionID, &a.QuestionID, &a.AnswerText, &a.AIScore, &a.AIFeedback,
		&a.LecturerScore, &a.LecturerFeedback, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *InterviewAnswerRepo) ReplaceText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE interview_answers
		SET answer_text = $1,
			ai_score = NULL,
			ai_feedback = NULL,
			updated_at = NOW()
		WHERE id = $2
	`, text, id)
	return err
}

func (r *InterviewAnswerRepo) SetEvaluation(ctx context.Context, id uuid.UUID, scoreJSON json.RawMessage, feedback string) error {
	if len(scoreJSON) == 0 {
		scoreJSON = json.RawMessage("null")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE interview_answers
		SET ai_score = $1, ai_feedback = $2, updated_at = NOW()
		WHERE id = $3
	`, scoreJSON, feedback, id)
	return err
}

func (r *InterviewAnswerRepo) ListBySession(ctx context.Context, studentSessionID uuid.UUID) ([]*models.InterviewAnswer, error) {
	query := `SELECT id, student_session_id, question_id, answer_text, ai_score, ai_feedback, lecturer_score, lecturer_feedback, created_at, updated_at
		FROM interview_answers WHERE student_session_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, studentSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*models.InterviewAnswer
	for rows.Next() {
		a := &models.InterviewAnswer{}
		if err := rows.Scan(&a.ID, &a.StudentSessionID, &a.QuestionID, &a.AnswerText, &a.AIScore, &a.AIFeedback,
			&a.LecturerScore, &a.LecturerFeedback, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
