package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam represents a timed examination owned by one examiner.
// A published exam is immutable; edits are only allowed while DRAFT.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	CourseID        int        `json:"course_id"`
	ExaminerID      int        `json:"examiner_id"`
	PasswordHash    string     `json:"-"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	MaxAttempts     int        `json:"max_attempts"`
	PassingScore    float64    `json:"passing_score"`
	Instructions    string     `json:"instructions,omitempty"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// WindowContains reports whether now falls inside the exam's availability
// window. A nil bound is open-ended on that side.
func (e *Exam) WindowContains(now time.Time) bool {
	if e.StartTime != nil && now.Before(*e.StartTime) {
		return false
	}
	if e.EndTime != nil && now.After(*e.EndTime) {
		return false
	}
	return true
}

// Duration returns the exam duration as a time.Duration.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// DeadlineFrom computes the session deadline for an attempt started at the
// given instant: start + duration, clipped to the exam window end so no
// session outlives the window.
func (e *Exam) DeadlineFrom(startedAt time.Time) time.Time {
	deadline := startedAt.Add(e.Duration())
	if e.EndTime != nil && e.EndTime.Before(deadline) {
		deadline = *e.EndTime
	}
	return deadline
}

// CreateExamRequest is the payload for creating a new exam (always DRAFT).
type CreateExamRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	CourseID        int        `json:"course_id" binding:"required,min=1"`
	Password        string     `json:"password" binding:"required,min=4,max=64"`
	StartTime       *time.Time `json:"start_time" binding:"omitempty"`
	EndTime         *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	MaxAttempts     int        `json:"max_attempts" binding:"required,min=1,max=10"`
	PassingScore    float64    `json:"passing_score" binding:"min=0,max=100"`
	Instructions    string     `json:"instructions" binding:"omitempty,max=5000"`
}

// UpdateExamRequest is the payload for updating a DRAFT exam.
type UpdateExamRequest struct {
	Title           string     `json:"title" binding:"omitempty,min=3,max=255"`
	Password        string     `json:"password" binding:"omitempty,min=4,max=64"`
	StartTime       *time.Time `json:"start_time" binding:"omitempty"`
	EndTime         *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	MaxAttempts     int        `json:"max_attempts" binding:"omitempty,min=1,max=10"`
	PassingScore    *float64   `json:"passing_score" binding:"omitempty,min=0,max=100"`
	Instructions    *string    `json:"instructions" binding:"omitempty,max=5000"`
}

// ValidateAccessRequest is the payload for the exam password check.
type ValidateAccessRequest struct {
	Password string `json:"password" binding:"required,min=1,max=64"`
}

// LobbyExam is an exam as shown in the student lobby, with the attempt
// overlay the dashboard needs to decide whether the student may enter.
type LobbyExam struct {
	Exam
	CourseCode    string  `json:"course_code"`
	CourseTitle   string  `json:"course_title"`
	AttemptsTaken int     `json:"attempts_taken"`
	CanTakeExam   bool    `json:"can_take_exam"`
	LastScore     *float64 `json:"last_score,omitempty"`
}
