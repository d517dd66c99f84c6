package repository

import (
	"context"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository handles answer ledger reads. Writes go through
// AnswerService transactions so the session-status guard and the upsert
// always share one transaction.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// ListBySession retrieves all saved answers of a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, value, last_modified_at
		 FROM answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.Value, &a.LastModifiedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// MapBySession retrieves a session's answers as question_id → value.
func (r *AnswerRepository) MapBySession(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]string, error) {
	answers, err := r.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m := make(map[uuid.UUID]string, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a.Value
	}
	return m, nil
}
