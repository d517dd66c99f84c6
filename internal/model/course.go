package model

import "time"

// Course groups students under an examiner; enrollment decides which exams
// a student can see in the lobby.
type Course struct {
	ID         int       `json:"id"`
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	ExaminerID int       `json:"examiner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Code  string `json:"code" binding:"required,min=2,max=20"`
	Title string `json:"title" binding:"required,min=3,max=255"`
}

// EnrollStudentsRequest is the payload for enrolling students into a course.
type EnrollStudentsRequest struct {
	StudentIDs []int `json:"student_ids" binding:"required,min=1,dive,min=1"`
}
