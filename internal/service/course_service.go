package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrNotOwner means the resource belongs to another examiner.
var ErrNotOwner = errors.New("resource belongs to another examiner")

// CourseService manages courses and student enrollment.
type CourseService struct {
	courseRepo *repository.CourseRepository
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

// Create registers a new course owned by the examiner.
func (s *CourseService) Create(ctx context.Context, examinerID int, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Code:       req.Code,
		Title:      req.Title,
		ExaminerID: examinerID,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.log.Info().Str("code", course.Code).Int("id", course.ID).Msg("Course created")
	return course, nil
}

// GetOwned loads a course and verifies the examiner owns it.
func (s *CourseService) GetOwned(ctx context.Context, courseID, examinerID int) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.ExaminerID != examinerID {
		return nil, ErrNotOwner
	}
	return course, nil
}

// ListByExaminer returns the examiner's courses.
func (s *CourseService) ListByExaminer(ctx context.Context, examinerID int) ([]model.Course, error) {
	return s.courseRepo.ListByExaminer(ctx, examinerID)
}

// Enroll adds students to a course. Already enrolled students are skipped.
func (s *CourseService) Enroll(ctx context.Context, courseID, examinerID int, studentIDs []int) error {
	if _, err := s.GetOwned(ctx, courseID, examinerID); err != nil {
		return err
	}
	if err := s.courseRepo.Enroll(ctx, courseID, studentIDs); err != nil {
		return fmt.Errorf("enroll students: %w", err)
	}

	s.log.Info().Int("course_id", courseID).Int("count", len(studentIDs)).Msg("Students enrolled")
	return nil
}

// ListEnrolled returns the students enrolled in a course.
func (s *CourseService) ListEnrolled(ctx context.Context, courseID, examinerID int) ([]model.Student, error) {
	if _, err := s.GetOwned(ctx, courseID, examinerID); err != nil {
		return nil, err
	}
	return s.courseRepo.ListEnrolled(ctx, courseID)
}
