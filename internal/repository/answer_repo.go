package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type StudentAnswerRepo struct {
	pool *pgxpool.Pool
}

func NewStudentAnswerRepo(pool *pgxpool.Pool) *StudentAnswerRepo {
	return &StudentAnswerRepo{pool: pool}
}

func (r *StudentAnswerRepo) Create(ctx context.Context, a *models.StudentAnswer) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `INSERT INTO student_answers (id, student_session_id, question_id, answer_text)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, a.ID, a.StudentSessionID, a.QuestionID, a.AnswerText).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *StudentAnswerRepo) FindByQuestion(ctx context.Context, studentSessionID, questionID uuid.UUID) (*models.StudentAnswer, error) {
	a := &models.StudentAnswer{}
	query := `SELECT id, student_session_id, question_id, answer_text, ai_score, ai_feedback, lecturer_score, lecturer_feedback, created_at, updated_at
		FROM student_answers WHERE student_session_id = $1 AND question_id = $2`

	err := r.pool.QueryRow(ctx, query, studentSessionID, questionID).Scan(
		&a.ID, &a.StudentSessionID, &a.QuestionID, &a.AnswerText, &a.AIScore, &a.AIFeedback,
		&a.LecturerScore, &a.LecturerFeedback, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReplaceText overwrites a resubmitted answer and clears any stale
// evaluation; scores are recomputed only at session end.
func (r *StudentAnswerRepo) ReplaceText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE student_answers
		SET answer_text = $1,
			ai_score = NULL,
			ai_feedback = NULL,
			updated_at = NOW()
		WHERE id = $2
	`, text, id)
	return err
}

func (r *StudentAnswerRepo) SetEvaluation(ctx context.Context, id uuid.UUID, score *float64, feedback string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE student_answers
		SET ai_score = $1, ai_feedback = $2, updated_at = NOW()
		WHERE id = $3
	`, score, feedback, id)
	return err
}

func (r *StudentAnswerRepo) ListBySession(ctx context.Context, studentSessionID uuid.UUID) ([]*models.StudentAnswer, error) {
	query := `SELECT id, student_session_id, question_id, answer_text, ai_score, ai_feedback, lecturer_score, lecturer_feedback, created_at, updated_at
		FROM student_answers WHERE student_session_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, studentSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*models.StudentAnswer
	for rows.Next() {
		a := &models.StudentAnswer{}
		if err := rows.Scan(&a.ID, &a.StudentSessionID, &a.QuestionID, &a.AnswerText, &a.AIScore, &a.AIFeedback,
			&a.LecturerScore, &a.LecturerFeedback, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
