package model

import "time"

// Student represents a registered examination candidate.
// Identity fields are immutable after creation; accounts are deactivated
// rather than deleted so past results keep their owner.
type Student struct {
	ID        int       `json:"id"`
	MatricNo  string    `json:"matric_no"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	MatricNo string `json:"matric_no" binding:"required,min=4,max=30,matric"`
}

// CreateStudentRequest is the payload for registering a new student.
type CreateStudentRequest struct {
	MatricNo  string `json:"matric_no" binding:"required,min=4,max=30,matric"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"omitempty,email,max=255"`
}
