package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type StudentSessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudentSessionRepo(pool *pgxpool.Pool) *StudentSessionRepo {
	return &StudentSessionRepo{pool: pool}
}

func (r *StudentSessionRepo) Create(ctx context.Context, ss *models.StudentSession) error {
	if ss.ID == uuid.Nil {
		ss.ID = uuid.New()
	}

	query := `INSERT INTO student_sessions (id, session_id, student_id)
		VALUES ($1, $2, $3) RETURNING join_time`

	return r.pool.QueryRow(ctx, query, ss.ID, ss.SessionID, ss.StudentID).Scan(&ss.JoinTime)
}

func (r *StudentSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudentSession, error) {
	ss := &models.StudentSession{}
	query := `SELECT id, session_id, student_id, score_total, ai_overall_feedback, join_time
		FROM student_sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ss.ID, &ss.SessionID, &ss.StudentID, &ss.ScoreTotal, &ss.AIOverallFeedback, &ss.JoinTime,
	)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *StudentSessionRepo) FindBySessionAndStudent(ctx context.Context, sessionID, studentID uuid.UUID) (*models.StudentSession, error) {
	ss := &models.StudentSession{}
	query := `SELECT id, session_id, student_id, score_total, ai_overall_feedback, join_time
		FROM student_sessions WHERE session_id = $1 AND student_id = $2`

	err := r.pool.QueryRow(ctx, query, sessionID, studentID).Scan(
		&ss.ID, &ss.SessionID, &ss.StudentID, &ss.ScoreTotal, &ss.AIOverallFeedback, &ss.JoinTime,
	)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *StudentSessionRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.StudentSession, error) {
	query := `SELECT id, session_id, student_id, score_total, ai_overall_feedback, join_time
		FROM student_sessions WHERE student_id = $1 ORDER BY join_time DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.StudentSession
	for rows.Next() {
		ss := &models.StudentSession{}
		if err := rows.Scan(&ss.ID, &ss.SessionID, &ss.StudentID, &ss.ScoreTotal, &ss.AIOverallFeedback, &ss.JoinTime); err != nil {
			return nil, err
		}
		sessions = append(sessions, ss)
	}
	return sessions, rows.Err()
}

// Completion is one candidate final-state payload for a student session.
type Completion struct {
	ScoreTotal      float64
	OverallFeedback *string
}

func (r *StudentSessionRepo) Finish(ctx context.Context, id uuid.UUID, c Completion) error {
	if c.OverallFeedback == nil {
		_, err := r.pool.Exec(ctx, `UPDATE student_sessions SET score_total = $1 WHERE id = $2`, c.ScoreTotal, id)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE student_sessions SET score_total = $1, ai_overall_feedback = $2 WHERE id = $3`,
		c.ScoreTotal, c.OverallFeedback, id)
	return err
}

// FinishWithFallbacks tries each completion payload in order until one
// persists. Payloads are expected to shrink: full feedback first, then score
// only, then a generic message.
func (r *StudentSessionRepo) FinishWithFallbacks(ctx context.Context, id uuid.UUID, attempts []Completion) error {
	var lastErr error
	for i, c := range attempts {
		if err := r.Finish(ctx, id, c); err != nil {
			log.Printf("student_session %s: finish attempt %d/%d failed: %v", id, i+1, len(attempts), err)
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("no completion payloads provided")
	}
	return fmt.Errorf("all %d finish attempts failed: %w", len(attempts), lastErr)
}
