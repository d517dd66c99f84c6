package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	ErrExamNotDraft = errors.New("exam is no longer a draft")
	ErrNoQuestions  = errors.New("exam has no questions")
)

// ExamService manages exam authoring. Exams are editable while DRAFT;
// publishing freezes the paper and caches it for session delivery.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	courseRepo   *repository.CourseRepository
	sessionRepo  *repository.ExamSessionRepository
	auth         *AuthService
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	courseRepo *repository.CourseRepository,
	sessionRepo *repository.ExamSessionRepository,
	auth *AuthService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		courseRepo:   courseRepo,
		sessionRepo:  sessionRepo,
		auth:         auth,
		rdb:          rdb,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetOwned loads an exam and verifies the examiner owns it.
func (s *ExamService) GetOwned(ctx context.Context, examID uuid.UUID, examinerID int) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.ExaminerID != examinerID {
		return nil, ErrNotOwner
	}
	return exam, nil
}

// Create registers a new DRAFT exam under a course the examiner owns.
func (s *ExamService) Create(ctx context.Context, examinerID int, req *model.CreateExamRequest) (*model.Exam, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.ExaminerID != examinerID {
		return nil, ErrNotOwner
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	exam := &model.Exam{
		Title:           req.Title,
		CourseID:        req.CourseID,
		ExaminerID:      examinerID,
		PasswordHash:    hash,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     req.MaxAttempts,
		PassingScore:    req.PassingScore,
		Instructions:    req.Instructions,
		Status:          model.ExamStatusDraft,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, err
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Str("title", exam.Title).Msg("Exam created")
	return exam, nil
}

// Update edits a DRAFT exam. Published and archived exams are immutable.
func (s *ExamService) Update(ctx context.Context, examID uuid.UUID, examinerID int, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.GetOwned(ctx, examID, examinerID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		exam.PasswordHash = hash
	}
	if req.StartTime != nil {
		exam.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = req.EndTime
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.MaxAttempts > 0 {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.Instructions != nil {
		exam.Instructions = *req.Instructions
	}

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Publish moves a DRAFT exam to PUBLISHED and caches the frozen paper and
// grading key so session delivery and scoring skip the questions table.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID, examinerID int) (*model.Exam, error) {
	exam, err := s.GetOwned(ctx, examID, examinerID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	if err := s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusPublished); err != nil {
		return nil, err
	}
	exam.Status = model.ExamStatusPublished

	s.cachePaper(ctx, examID, questions)

	s.log.Info().Str("exam_id", examID.String()).Int("questions", len(questions)).Msg("Exam published")
	return exam, nil
}

// Archive retires a PUBLISHED exam. Archived exams leave the lobby but keep
// their sessions and results.
func (s *ExamService) Archive(ctx context.Context, examID uuid.UUID, examinerID int) (*model.Exam, error) {
	exam, err := s.GetOwned(ctx, examID, examinerID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	if err := s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusArchived); err != nil {
		return nil, err
	}
	exam.Status = model.ExamStatusArchived
	return exam, nil
}

// ListByExaminer returns a page of the examiner's exams.
func (s *ExamService) ListByExaminer(ctx context.Context, examinerID, limit, offset int) ([]model.Exam, int, error) {
	return s.examRepo.ListByExaminerPaginated(ctx, examinerID, limit, offset)
}

// AddQuestion appends a question to a DRAFT exam.
func (s *ExamService) AddQuestion(ctx context.Context, examID uuid.UUID, examinerID int, req *model.AddQuestionRequest) (*model.Question, error) {
	exam, err := s.GetOwned(ctx, examID, examinerID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	q := questionFromRequest(examID, req)
	if err := s.questionRepo.Add(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ReplaceQuestions swaps the whole question set of a DRAFT exam.
func (s *ExamService) ReplaceQuestions(ctx context.Context, examID uuid.UUID, examinerID int, req *model.ReplaceQuestionsRequest) ([]model.Question, error) {
	exam, err := s.GetOwned(ctx, examID, examinerID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i := range req.Questions {
		questions = append(questions, *questionFromRequest(examID, &req.Questions[i]))
	}
	if err := s.questionRepo.ReplaceForExam(ctx, examID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestions returns an exam's questions with their grading keys, for the
// owning examiner only.
func (s *ExamService) ListQuestions(ctx context.Context, examID uuid.UUID, examinerID int) ([]model.Question, error) {
	if _, err := s.GetOwned(ctx, examID, examinerID); err != nil {
		return nil, err
	}
	return s.questionRepo.ListByExam(ctx, examID)
}

// Results returns a page of session results for an exam.
func (s *ExamService) Results(ctx context.Context, examID uuid.UUID, examinerID, limit, offset int) ([]repository.SessionResult, int, error) {
	if _, err := s.GetOwned(ctx, examID, examinerID); err != nil {
		return nil, 0, err
	}
	return s.sessionRepo.ListResultsByExam(ctx, examID, limit, offset)
}

// cachePaper writes the student paper and answer key to Redis. Failures are
// logged only; scoring and delivery fall back to Postgres.
func (s *ExamService) cachePaper(ctx context.Context, examID uuid.UUID, questions []model.Question) {
	paper := make([]model.QuestionForStudent, 0, len(questions))
	key := make(map[uuid.UUID]model.KeyEntry, len(questions))
	for i := range questions {
		paper = append(paper, questions[i].ForStudent())
		key[questions[i].ID] = model.KeyEntry{
			CorrectOption: questions[i].CorrectOption,
			Points:        questions[i].Points,
		}
	}

	if encoded, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, config.CacheKey.ExamPaperKey(examID.String()), encoded, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache exam paper")
		}
	}
	if encoded, err := json.Marshal(key); err == nil {
		if err := s.rdb.Set(ctx, config.CacheKey.ExamAnswerKeyKey(examID.String()), encoded, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache answer key")
		}
	}
}

func questionFromRequest(examID uuid.UUID, req *model.AddQuestionRequest) *model.Question {
	return &model.Question{
		ExamID:        examID,
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		Points:        req.Points,
		OrderNum:      req.OrderNum,
	}
}
