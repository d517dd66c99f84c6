package repository

import (
	"context"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionResult combines student identity with session outcome, as listed on
// the examiner's results page.
type SessionResult struct {
	StudentID     int                 `json:"student_id"`
	MatricNo      string              `json:"matric_no"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	AttemptNumber int                 `json:"attempt_number"`
	Status        model.SessionStatus `json:"status"`
	Percentage    *float64            `json:"percentage"`
	Pass          *bool               `json:"pass"`
	StartedAt     *time.Time          `json:"started_at"`
	SubmittedAt   *time.Time          `json:"submitted_at"`
}

// ExamSessionRepository handles exam session reads. All state-changing
// session operations go through SessionService's transactions; this
// repository never mutates a session.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, attempt_number, status, started_at, ends_at, submitted_at, created_at`

func scanSession(row interface{ Scan(...any) error }, s *model.ExamSession) error {
	return row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.AttemptNumber, &s.Status,
		&s.StartedAt, &s.EndsAt, &s.SubmittedAt, &s.CreatedAt)
}

// GetByID retrieves a session by its UUID.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id)
	if err := scanSession(row, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActive retrieves the single non-terminal session for (exam, student),
// if one exists. The partial unique index guarantees at most one row.
func (r *ExamSessionRepository) GetActive(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2 AND status IN ($3, $4)`,
		examID, studentID, model.SessionStatusCreated, model.SessionStatusInProgress)
	if err := scanSession(row, s); err != nil {
		return nil, err
	}
	return s, nil
}

// CountAttempts returns how many sessions exist for (exam, student),
// terminal or not. Attempt numbering is derived from this count.
func (r *ExamSessionRepository) CountAttempts(ctx context.Context, examID uuid.UUID, studentID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID).Scan(&n)
	return n, err
}

// ListResultsByExam retrieves per-student outcomes for an exam, paginated.
func (r *ExamSessionRepository) ListResultsByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]SessionResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1`, examID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.matric_no, s.first_name, s.last_name,
		        es.attempt_number, es.status, res.percentage, res.pass,
		        es.started_at, es.submitted_at
		 FROM exam_sessions es
		 JOIN students s ON es.student_id = s.id
		 LEFT JOIN results res ON res.session_id = es.id
		 WHERE es.exam_id = $1
		 ORDER BY s.matric_no ASC, es.attempt_number ASC
		 LIMIT $2 OFFSET $3`, examID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var sr SessionResult
		if err := rows.Scan(&sr.StudentID, &sr.MatricNo, &sr.FirstName, &sr.LastName,
			&sr.AttemptNumber, &sr.Status, &sr.Percentage, &sr.Pass,
			&sr.StartedAt, &sr.SubmittedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, sr)
	}
	return results, total, rows.Err()
}
