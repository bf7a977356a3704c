package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type InterviewQuestionRepo struct {
	pool *pgxpool.Pool
}

func NewInterviewQuestionRepo(pool *pgxpool.Pool) *InterviewQuestionRepo {
	return &InterviewQuestionRepo{pool: pool}
}

func (r *InterviewQuestionRepo) CreateBatch(ctx context.Context, questions []*models.InterviewQuestion) error {
	if len(questions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		batch.Queue(`INSERT INTO interview_questions
			(id, session_id, content, keywords, question_type, category, purpose, job_title, question_index, status, reference_answer)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			q.ID, q.SessionID, q.Content, q.Keywords, q.QuestionType, q.Category, q.Purpose, q.JobTitle, q.QuestionIndex, q.Status, q.ReferenceAnswer)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range questions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListBySession returns interview questions in presentation order.
func (r *InterviewQuestionRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.InterviewQuestion, error) {
	query := `SELECT id, session_id, content, keywords, question_type, category, purpose, job_title, question_index, status, reference_answer, created_at
		FROM interview_questions WHERE session_id = $1 ORDER BY question_index`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInterviewQuestions(rows)
}

func (r *InterviewQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewQuestion, error) {
	q := &models.InterviewQuestion{}
	query := `SELECT id, session_id, content, keywords, question_type, category, purpose, job_title, question_index, status, reference_answer, created_at
		FROM interview_questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.SessionID, &q.Content, &q.Keywords, &q.QuestionType, &q.Category, &q.Purpose, &q.JobTitle, &q.QuestionIndex, &q.Status, &q.ReferenceAnswer, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *InterviewQuestionRepo) SetReferenceAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx, `UPDATE interview_questions SET reference_answer = $1 WHERE id = $2`, answer, id)
	return err
}

func scanInterviewQuestions(rows pgx.Rows) ([]*models.InterviewQuestion, error) {
	var questions []*models.InterviewQuestion
	for rows.Next() {
		q := &models.InterviewQuestion{}
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Content, &q.Keywords, &q.QuestionType, &q.Category, &q.Purpose, &q.JobTitle, &q.QuestionIndex, &q.Status, &q.ReferenceAnswer, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
