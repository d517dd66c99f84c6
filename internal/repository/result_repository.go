package repository

import (
	"context"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles result reads. Results are written exactly once
// inside the terminal-transition transaction in SessionService.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// GetBySessionID retrieves the result of a terminal session.
func (r *ResultRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, raw_score, percentage, pass, created_at
		 FROM results WHERE session_id = $1`, sessionID,
	).Scan(&res.ID, &res.SessionID, &res.RawScore, &res.Percentage, &res.Pass, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}
