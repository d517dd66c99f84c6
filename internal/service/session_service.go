package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	ErrSessionTerminal   = errors.New("session is already in a terminal state")
	ErrSessionNotStarted = errors.New("session has not been started")
	ErrNotSessionOwner   = errors.New("session belongs to another student")

	// ErrDeadlineNotReached rejects an auto-submit signal for a session
	// that still has time on its clock.
	ErrDeadlineNotReached = errors.New("session deadline has not been reached")
)

// SessionService owns the session lifecycle. Every transition runs inside a
// transaction that locks the session row, so concurrent submits, expiry
// sweeps, and answer writes serialize on that row. Scoring happens exactly
// once, in the same transaction as the terminal transition.
type SessionService struct {
	pool         *pgxpool.Pool
	rdb          *redis.Client
	examRepo     *repository.ExamRepository
	sessionRepo  *repository.ExamSessionRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	grace        time.Duration
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	examRepo *repository.ExamRepository,
	sessionRepo *repository.ExamSessionRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		pool:         pool,
		rdb:          rdb,
		examRepo:     examRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		grace:        cfg.SubmitGrace,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// GetOwned loads a session and verifies the caller owns it.
func (s *SessionService) GetOwned(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// Start transitions a CREATED session to IN_PROGRESS, stamping started_at and
// the authoritative deadline. Calling Start on a session that is already
// IN_PROGRESS is a no-op reconnect and returns the running session unchanged.
func (s *SessionService) Start(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.ExamSession, []model.QuestionForStudent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := lockSession(ctx, tx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.StudentID != studentID {
		return nil, nil, ErrNotSessionOwner
	}
	if session.Status.IsTerminal() {
		return nil, nil, ErrSessionTerminal
	}

	// A reconnect to a session whose clock already ran out finalizes it
	// instead of handing the paper back.
	if session.Status == model.SessionStatusInProgress && session.RemainingSeconds(time.Now()) == 0 {
		tx.Rollback(ctx)
		if _, err := s.finalize(ctx, sessionID, model.SessionStatusAutoSubmitted); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrSessionTerminal
	}

	if session.Status == model.SessionStatusCreated {
		exam, err := s.examRepo.GetByID(ctx, session.ExamID)
		if err != nil {
			return nil, nil, fmt.Errorf("get exam: %w", err)
		}

		now := time.Now()
		endsAt := exam.DeadlineFrom(now)
		if _, err := tx.Exec(ctx,
			`UPDATE exam_sessions SET status = $1, started_at = $2, ends_at = $3 WHERE id = $4`,
			model.SessionStatusInProgress, now, endsAt, sessionID); err != nil {
			return nil, nil, fmt.Errorf("start session: %w", err)
		}
		session.Status = model.SessionStatusInProgress
		session.StartedAt = &now
		session.EndsAt = &endsAt
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	s.cacheClock(ctx, session)

	questions, err := s.Paper(ctx, session.ExamID)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Time("ends_at", *session.EndsAt).
		Msg("Session started")

	return session, questions, nil
}

// Paper returns the student-facing question set for an exam. The paper is
// immutable once the exam is published, so the Redis copy never goes stale.
func (s *SessionService) Paper(ctx context.Context, examID uuid.UUID) ([]model.QuestionForStudent, error) {
	key := config.CacheKey.ExamPaperKey(examID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var cached []model.QuestionForStudent
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		s.log.Warn().Str("exam_id", examID.String()).Msg("Corrupt paper cache, rebuilding from database")
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	paper := make([]model.QuestionForStudent, 0, len(questions))
	for i := range questions {
		paper = append(paper, questions[i].ForStudent())
	}

	if encoded, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, encoded, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache exam paper")
		}
	}
	return paper, nil
}

// RemainingSeconds reports the authoritative countdown for a loaded session.
// A session found past its deadline is auto-submitted here, so enforcement
// does not wait for the sweep worker.
func (s *SessionService) RemainingSeconds(ctx context.Context, session *model.ExamSession) (int, *model.ExamSession, error) {
	if session.Status != model.SessionStatusInProgress {
		return 0, session, nil
	}

	remaining := session.RemainingSeconds(time.Now())
	if remaining > 0 {
		return remaining, session, nil
	}

	if _, err := s.finalize(ctx, session.ID, model.SessionStatusAutoSubmitted); err != nil {
		return 0, session, err
	}
	updated, err := s.sessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		return 0, session, err
	}
	return 0, updated, nil
}

// Clock is the Redis-only fast path for the websocket tick loop. ok is false
// when no clock snapshot exists, which means the session is not running.
func (s *SessionService) Clock(ctx context.Context, sessionID uuid.UUID) (int, bool, error) {
	endsAtMs, err := s.rdb.Get(ctx, config.CacheKey.SessionClockKey(sessionID.String())).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read clock: %w", err)
	}

	remaining := time.Until(time.UnixMilli(endsAtMs))
	if remaining <= 0 {
		return 0, true, nil
	}
	// Round up the same way ExamSession.RemainingSeconds does, so the REST
	// countdown and the stream never disagree for the same deadline.
	return int((remaining + time.Second - 1) / time.Second), true, nil
}

// Submit finalizes a session on the student's request. Submitting an already
// terminal session returns the existing result instead of failing, so retries
// after a dropped response are harmless.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.Result, error) {
	session, err := s.GetOwned(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCreated {
		return nil, ErrSessionNotStarted
	}
	return s.finalize(ctx, sessionID, model.SessionStatusSubmitted)
}

// AutoSubmit finalizes a session whose deadline has passed, on a signal from
// a still-connected client. The deadline check is server-side; a client that
// calls this early gets ErrDeadlineNotReached and nothing changes.
func (s *SessionService) AutoSubmit(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.Result, error) {
	session, err := s.GetOwned(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCreated {
		return nil, ErrSessionNotStarted
	}
	if session.Status == model.SessionStatusInProgress && session.RemainingSeconds(time.Now()) > 0 {
		return nil, ErrDeadlineNotReached
	}
	return s.finalize(ctx, sessionID, model.SessionStatusAutoSubmitted)
}

// ResultFor returns the result of a finished session owned by the caller.
func (s *SessionService) ResultFor(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.Result, error) {
	if _, err := s.GetOwned(ctx, sessionID, studentID); err != nil {
		return nil, err
	}
	return s.resultRepo.GetBySessionID(ctx, sessionID)
}

// ExpireOverdue finalizes every session past its deadline plus the grace
// period. IN_PROGRESS sessions expire against their own ends_at; CREATED
// sessions that were never started expire when the exam window closes.
func (s *SessionService) ExpireOverdue(ctx context.Context) (int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM exam_sessions
		 WHERE (status = $1 AND ends_at < NOW() - make_interval(secs => $3))
		    OR (status = $2 AND EXISTS (
		        SELECT 1 FROM exams e
		        WHERE e.id = exam_sessions.exam_id
		          AND e.end_time < NOW() - make_interval(secs => $3)))`,
		model.SessionStatusInProgress, model.SessionStatusCreated, int(s.grace.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("list overdue sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if _, err := s.finalize(ctx, id, model.SessionStatusExpired); err != nil {
			s.log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to expire session")
			continue
		}
		expired++
	}
	return expired, nil
}

// finalize moves a session to a terminal status and scores it, both inside
// one transaction against the locked session row. If another transition won
// the race the existing result is returned and nothing is written.
func (s *SessionService) finalize(ctx context.Context, sessionID uuid.UUID, terminal model.SessionStatus) (*model.Result, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := lockSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return s.resultRepo.GetBySessionID(ctx, sessionID)
	}
	if !session.Status.CanTransition(terminal) {
		return nil, ErrSessionNotStarted
	}

	var passingScore float64
	if err := tx.QueryRow(ctx,
		`SELECT passing_score FROM exams WHERE id = $1`, session.ExamID).Scan(&passingScore); err != nil {
		return nil, fmt.Errorf("get passing score: %w", err)
	}

	key, err := s.answerKey(ctx, tx, session.ExamID)
	if err != nil {
		return nil, err
	}

	answers := make(map[uuid.UUID]string)
	rows, err := tx.Query(ctx,
		`SELECT question_id, value FROM answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	for rows.Next() {
		var qID uuid.UUID
		var value string
		if err := rows.Scan(&qID, &value); err != nil {
			rows.Close()
			return nil, err
		}
		answers[qID] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	score := Grade(answers, key, passingScore)

	result := &model.Result{
		SessionID:  sessionID,
		RawScore:   score.RawScore,
		Percentage: score.Percentage,
		Pass:       score.Pass,
	}
	if err := tx.QueryRow(ctx,
		`INSERT INTO results (session_id, raw_score, percentage, pass)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		result.SessionID, result.RawScore, result.Percentage, result.Pass,
	).Scan(&result.ID, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert result: %w", err)
	}

	var submittedAt *time.Time
	if terminal != model.SessionStatusExpired {
		now := time.Now()
		submittedAt = &now
	}
	if _, err := tx.Exec(ctx,
		`UPDATE exam_sessions SET status = $1, submitted_at = $2 WHERE id = $3`,
		terminal, submittedAt, sessionID); err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.dropSessionCache(ctx, sessionID)

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("status", string(terminal)).
		Float64("percentage", result.Percentage).
		Msg("Session finalized")

	return result, nil
}

// answerKey loads the grading key, preferring the Redis copy cached at
// publish time. The key is immutable once the exam is published.
func (s *SessionService) answerKey(ctx context.Context, tx pgx.Tx, examID uuid.UUID) (map[uuid.UUID]model.KeyEntry, error) {
	cacheKey := config.CacheKey.ExamAnswerKeyKey(examID.String())

	raw, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		var cached map[uuid.UUID]model.KeyEntry
		if err := json.Unmarshal([]byte(raw), &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	key := make(map[uuid.UUID]model.KeyEntry)
	rows, err := tx.Query(ctx,
		`SELECT id, correct_option, points FROM questions WHERE exam_id = $1`, examID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var entry model.KeyEntry
		if err := rows.Scan(&id, &entry.CorrectOption, &entry.Points); err != nil {
			return nil, err
		}
		key[id] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(key); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, encoded, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache answer key")
		}
	}
	return key, nil
}

func (s *SessionService) cacheClock(ctx context.Context, session *model.ExamSession) {
	if session.EndsAt == nil {
		return
	}
	ttl := time.Until(session.EndsAt.Add(s.grace)) + time.Minute
	if ttl <= 0 {
		return
	}
	key := config.CacheKey.SessionClockKey(session.ID.String())
	if err := s.rdb.Set(ctx, key, session.EndsAt.UnixMilli(), ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to cache session clock")
	}
}

func (s *SessionService) dropSessionCache(ctx context.Context, sessionID uuid.UUID) {
	keys := []string{
		config.CacheKey.SessionClockKey(sessionID.String()),
		config.CacheKey.SessionAnswersKey(sessionID.String()),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to drop session cache")
	}
}

// lockSession reads the session row under FOR UPDATE so the caller's
// transaction is the only one acting on it.
func lockSession(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := tx.QueryRow(ctx,
		`SELECT id, exam_id, student_id, attempt_number, status, started_at, ends_at, submitted_at, created_at
		 FROM exam_sessions WHERE id = $1 FOR UPDATE`, sessionID,
	).Scan(&s.ID, &s.ExamID, &s.StudentID, &s.AttemptNumber, &s.Status,
		&s.StartedAt, &s.EndsAt, &s.SubmittedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
