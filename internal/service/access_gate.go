package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Access policy errors.
var (
	ErrStudentInactive   = errors.New("student account is deactivated")
	ErrExamNotPublished  = errors.New("exam is not published")
	ErrNotEnrolled       = errors.New("student is not enrolled in this exam's course")
	ErrWrongPassword     = errors.New("wrong exam password")
	ErrAttemptsExhausted = errors.New("maximum attempts exhausted")
	ErrOutsideWindow     = errors.New("current time is outside the exam window")
)

// AccessGateService decides whether a student may enter an exam and creates
// the attempt row. Session creation is the only write it performs, and it
// happens inside a transaction that serializes per student so two concurrent
// validations cannot both pass the attempt-count check.
type AccessGateService struct {
	pool        *pgxpool.Pool
	examRepo    *repository.ExamRepository
	sessionRepo *repository.ExamSessionRepository
	auth        *AuthService
	log         zerolog.Logger
}

// NewAccessGateService creates a new AccessGateService.
func NewAccessGateService(
	pool *pgxpool.Pool,
	examRepo *repository.ExamRepository,
	sessionRepo *repository.ExamSessionRepository,
	auth *AuthService,
	log zerolog.Logger,
) *AccessGateService {
	return &AccessGateService{
		pool:        pool,
		examRepo:    examRepo,
		sessionRepo: sessionRepo,
		auth:        auth,
		log:         log.With().Str("component", "access_gate").Logger(),
	}
}

// ValidateExamAccess checks password, enrollment, window, and attempt policy,
// then returns the student's session for this exam. The call is idempotent:
// an existing non-terminal session is returned instead of creating another.
func (s *AccessGateService) ValidateExamAccess(ctx context.Context, examID uuid.UUID, studentID int, password string) (*model.ExamSession, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	enrolled, err := s.examRepo.IsStudentEnrolled(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if err := s.auth.CheckPassword(exam.PasswordHash, password); err != nil {
		return nil, ErrWrongPassword
	}

	if !exam.WindowContains(time.Now()) {
		return nil, ErrOutsideWindow
	}

	// Idempotency: a non-terminal session already covers this (student, exam).
	existing, err := s.sessionRepo.GetActive(ctx, examID, studentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	session, err := s.createAttempt(ctx, exam, studentID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Int("attempt", session.AttemptNumber).
		Msg("Attempt created")

	return session, nil
}

// createAttempt inserts the session row. The student row is locked for the
// duration of the transaction so the attempt count re-check cannot race with
// a concurrent validation, and the partial unique index on non-terminal
// sessions backstops the one-active-session invariant.
func (s *AccessGateService) createAttempt(ctx context.Context, exam *model.Exam, studentID int) (*model.ExamSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT id FROM students WHERE id = $1 FOR UPDATE`, studentID); err != nil {
		return nil, fmt.Errorf("lock student: %w", err)
	}

	var attempts int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1 AND student_id = $2`,
		exam.ID, studentID).Scan(&attempts); err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if attempts >= exam.MaxAttempts {
		return nil, ErrAttemptsExhausted
	}

	session := &model.ExamSession{
		ExamID:        exam.ID,
		StudentID:     studentID,
		AttemptNumber: attempts + 1,
		Status:        model.SessionStatusCreated,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, attempt_number, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, student_id) WHERE status IN ('CREATED', 'IN_PROGRESS') DO NOTHING
		 RETURNING id, created_at`,
		session.ExamID, session.StudentID, session.AttemptNumber, session.Status,
	).Scan(&session.ID, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a concurrent-create race; surface the winner instead.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return s.sessionRepo.GetActive(ctx, exam.ID, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return session, nil
}
