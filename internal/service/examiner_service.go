package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ExaminerService manages examiner accounts and their password login.
type ExaminerService struct {
	examinerRepo *repository.ExaminerRepository
	auth         *AuthService
	log          zerolog.Logger
}

// NewExaminerService creates a new ExaminerService.
func NewExaminerService(examinerRepo *repository.ExaminerRepository, auth *AuthService, log zerolog.Logger) *ExaminerService {
	return &ExaminerService{
		examinerRepo: examinerRepo,
		auth:         auth,
		log:          log.With().Str("component", "examiner_service").Logger(),
	}
}

// Authenticate checks an examiner's email and password. Unknown emails and
// wrong passwords both surface as ErrInvalidCredentials.
func (s *ExaminerService) Authenticate(ctx context.Context, email, password string) (*model.Examiner, error) {
	examiner, err := s.examinerRepo.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get examiner: %w", err)
	}
	if err := s.auth.CheckPassword(examiner.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return examiner, nil
}

// GetByID loads an examiner account.
func (s *ExaminerService) GetByID(ctx context.Context, id int) (*model.Examiner, error) {
	return s.examinerRepo.GetByID(ctx, id)
}

// Create registers a new examiner account with a bcrypt password hash.
func (s *ExaminerService) Create(ctx context.Context, name, email, password string) (*model.Examiner, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	examiner := &model.Examiner{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.examinerRepo.Create(ctx, examiner); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Int("id", examiner.ID).Msg("Examiner created")
	return examiner, nil
}
