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

// StudentService manages student accounts and the matric-number login check.
type StudentService struct {
	studentRepo *repository.StudentRepository
	examRepo    *repository.ExamRepository
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, examRepo *repository.ExamRepository, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		examRepo:    examRepo,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// Authenticate resolves a matric number to an active student account.
// Unknown matric numbers surface as ErrInvalidCredentials so the login
// response does not reveal which numbers exist.
func (s *StudentService) Authenticate(ctx context.Context, matricNo string) (*model.Student, error) {
	student, err := s.studentRepo.GetByMatricNo(ctx, matricNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if !student.IsActive {
		return nil, ErrStudentInactive
	}
	return student, nil
}

// Lobby lists the published exams visible to a student, with their attempt
// counts and last scores.
func (s *StudentService) Lobby(ctx context.Context, studentID int) ([]model.LobbyExam, error) {
	return s.examRepo.ListAvailableForStudent(ctx, studentID)
}

// GetByID loads a student account.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Create registers a new student account.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		MatricNo:  req.MatricNo,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsActive:  true,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Str("matric_no", student.MatricNo).Int("id", student.ID).Msg("Student created")
	return student, nil
}

// List returns a page of student accounts.
func (s *StudentService) List(ctx context.Context, limit, offset int) ([]model.Student, int, error) {
	return s.studentRepo.ListPaginated(ctx, limit, offset)
}

// SetActive toggles a student account. Deactivated students keep their
// history but cannot log in or enter exams.
func (s *StudentService) SetActive(ctx context.Context, id int, active bool) error {
	if err := s.studentRepo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.log.Info().Int("id", id).Bool("active", active).Msg("Student activation changed")
	return nil
}
