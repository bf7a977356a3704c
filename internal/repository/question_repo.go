package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		batch.Queue(`INSERT INTO questions (id, session_id, content, keywords, question_type, status, reference_answer)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.SessionID, q.Content, q.Keywords, q.QuestionType, q.Status, q.ReferenceAnswer)
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

// ListEligible returns the questions a student may see, in storage order.
func (r *QuestionRepo) ListEligible(ctx context.Context, sessionID uuid.UUID) ([]*models.Question, error) {
	query := `SELECT id, session_id, content, keywords, question_type, status, reference_answer, created_at
		FROM questions
		WHERE session_id = $1 AND status IN ($2, $3)
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, sessionID, models.QuestionStatusApproved, models.QuestionStatusAnswersApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func (r *QuestionRepo) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE session_id = $1`, sessionID).Scan(&count)
	return count, err
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, session_id, content, keywords, question_type, status, reference_answer, created_at
		FROM questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.SessionID, &q.Content, &q.Keywords, &q.QuestionType, &q.Status, &q.ReferenceAnswer, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, session_id, content, keywords, question_type, status, reference_answer, created_at
		FROM questions WHERE id = ANY($1) ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func (r *QuestionRepo) SetReferenceAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx, `UPDATE questions SET reference_answer = $1 WHERE id = $2`, answer, id)
	return err
}

func scanQuestions(rows pgx.Rows) ([]*models.Question, error) {
	var questions []*models.Question
	for rows.Next() {
		q := &models.Question{}
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Content, &q.Keywords, &q.QuestionType, &q.Status, &q.ReferenceAnswer, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
