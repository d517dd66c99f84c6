package service

import (
	"context"
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

// ErrUnknownQuestion means the question does not belong to the session's exam.
var ErrUnknownQuestion = errors.New("question does not belong to this exam")

// errClockExpired marks an IN_PROGRESS session found past its deadline on a
// write path. The caller finalizes the session and reports ErrSessionTerminal.
var errClockExpired = errors.New("session clock has run out")

// AnswerService records answers while a session is running. Writes go to
// Postgres inside a transaction that locks the session row, so a submit or
// expiry racing with a save cannot interleave. Redis keeps a read mirror of
// each session's answers for cheap progress reads.
type AnswerService struct {
	pool       *pgxpool.Pool
	rdb        *redis.Client
	answerRepo *repository.AnswerRepository
	sessions   *SessionService
	log        zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(pool *pgxpool.Pool, rdb *redis.Client, answerRepo *repository.AnswerRepository, sessions *SessionService, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		pool:       pool,
		rdb:        rdb,
		answerRepo: answerRepo,
		sessions:   sessions,
		log:        log.With().Str("component", "answer_service").Logger(),
	}
}

// admitWrite decides whether a session may accept answer writes at the given
// instant. The deadline counts: an IN_PROGRESS session past ends_at is not
// writable, no matter how recently the client last checked in.
func admitWrite(session *model.ExamSession, studentID int, now time.Time) error {
	if session.StudentID != studentID {
		return ErrNotSessionOwner
	}
	switch session.Status {
	case model.SessionStatusCreated:
		return ErrSessionNotStarted
	case model.SessionStatusInProgress:
	default:
		return ErrSessionTerminal
	}
	if session.RemainingSeconds(now) == 0 {
		return errClockExpired
	}
	return nil
}

// Save upserts a single answer. Saving the same question again overwrites the
// previous value and refreshes last_modified_at.
func (s *AnswerService) Save(ctx context.Context, sessionID uuid.UUID, studentID int, questionID uuid.UUID, value string) error {
	return s.save(ctx, sessionID, studentID, []model.BatchAnswerEntry{
		{QuestionID: questionID, Answer: value},
	})
}

// SaveBatch upserts several answers atomically. One unknown question rejects
// the whole batch.
func (s *AnswerService) SaveBatch(ctx context.Context, sessionID uuid.UUID, studentID int, entries []model.BatchAnswerEntry) error {
	return s.save(ctx, sessionID, studentID, entries)
}

func (s *AnswerService) save(ctx context.Context, sessionID uuid.UUID, studentID int, entries []model.BatchAnswerEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := lockSession(ctx, tx, sessionID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := admitWrite(session, studentID, now); err != nil {
		if errors.Is(err, errClockExpired) {
			// Expiry is enforced here, on this server contact, not left to
			// the sweep. Release the row lock first so finalize can take it.
			tx.Rollback(ctx)
			if _, ferr := s.sessions.finalize(ctx, sessionID, model.SessionStatusAutoSubmitted); ferr != nil {
				return ferr
			}
			return ErrSessionTerminal
		}
		return err
	}

	for _, entry := range entries {
		if err := s.upsert(ctx, tx, session, entry, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.mirror(ctx, sessionID, entries)
	return nil
}

func (s *AnswerService) upsert(ctx context.Context, tx pgx.Tx, session *model.ExamSession, entry model.BatchAnswerEntry, now time.Time) error {
	var belongs bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1 AND exam_id = $2)`,
		entry.QuestionID, session.ExamID).Scan(&belongs); err != nil {
		return fmt.Errorf("check question: %w", err)
	}
	if !belongs {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, entry.QuestionID)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO answers (session_id, question_id, value, last_modified_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET value = EXCLUDED.value, last_modified_at = EXCLUDED.last_modified_at`,
		session.ID, entry.QuestionID, entry.Answer, now); err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

// List returns the session's saved answers keyed by question. The Redis
// mirror serves the common case; a miss falls back to Postgres and repairs
// the mirror.
func (s *AnswerService) List(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]string, error) {
	mirrorKey := config.CacheKey.SessionAnswersKey(sessionID.String())

	cached, err := s.rdb.HGetAll(ctx, mirrorKey).Result()
	if err == nil && len(cached) > 0 {
		answers := make(map[uuid.UUID]string, len(cached))
		for field, value := range cached {
			qID, err := uuid.Parse(field)
			if err != nil {
				s.log.Warn().Str("session_id", sessionID.String()).Msg("Corrupt answer mirror, rebuilding from database")
				answers = nil
				break
			}
			answers[qID] = value
		}
		if answers != nil {
			return answers, nil
		}
	}

	answers, err := s.answerRepo.MapBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		fields := make(map[string]string, len(answers))
		for qID, value := range answers {
			fields[qID.String()] = value
		}
		if err := s.rdb.HSet(ctx, mirrorKey, fields).Err(); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to repair answer mirror")
		}
	}
	return answers, nil
}

func (s *AnswerService) mirror(ctx context.Context, sessionID uuid.UUID, entries []model.BatchAnswerEntry) {
	fields := make(map[string]string, len(entries))
	for _, entry := range entries {
		fields[entry.QuestionID.String()] = entry.Answer
	}
	key := config.CacheKey.SessionAnswersKey(sessionID.String())
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to mirror answers")
	}
}
