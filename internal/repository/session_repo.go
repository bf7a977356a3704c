package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"viva-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `INSERT INTO sessions (id, name, session_type, status, password_hash, material_id, course_name, difficulty_level, time_limit_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.Name, s.Type, s.Status, s.PasswordHash, s.MaterialID, s.CourseName, s.DifficultyLevel, s.TimeLimit,
	).Scan(&s.CreatedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := &models.Session{}
	query := `SELECT id, name, session_type, status, password_hash, material_id, course_name, difficulty_level, time_limit_minutes, created_at
		FROM sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Type, &s.Status, &s.PasswordHash, &s.MaterialID, &s.CourseName, &s.DifficultyLevel, &s.TimeLimit, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) GetInterviewConfig(ctx context.Context, sessionID uuid.UUID) (*models.InterviewConfig, error) {
	c := &models.InterviewConfig{}
	query := `SELECT session_id, cv_url, jd_url, position, num_questions, time_limit_minutes, created_at
		FROM interview_configs WHERE session_id = $1`

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&c.SessionID, &c.CVURL, &c.JDURL, &c.Position, &c.NumQuestions, &c.TimeLimit, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SessionRepo) SaveInterviewConfig(ctx context.Context, c *models.InterviewConfig) error {
	query := `INSERT INTO interview_configs (session_id, cv_url, jd_url, position, num_questions, time_limit_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			cv_url = EXCLUDED.cv_url,
			jd_url = EXCLUDED.jd_url,
			position = EXCLUDED.position,
			num_questions = EXCLUDED.num_questions,
			time_limit_minutes = EXCLUDED.time_limit_minutes
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		c.SessionID, c.CVURL, c.JDURL, c.Position, c.NumQuestions, c.TimeLimit,
	).Scan(&c.CreatedAt)
}
