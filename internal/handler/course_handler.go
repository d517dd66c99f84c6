package handler

import (
	"net/http"
	"strconv"

	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// CourseHandler serves examiner course and enrollment management.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func courseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("course_id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// Create registers a new course.
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	course, err := h.courseService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// List returns the examiner's courses.
func (h *CourseHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	courses, err := h.courseService.ListByExaminer(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// Enroll adds students to a course.
func (h *CourseHandler) Enroll(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}

	var req model.EnrollStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.courseService.Enroll(c.Request.Context(), id, claims.UserID, req.StudentIDs); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrolled": len(req.StudentIDs)})
}

// ListEnrolled returns the students enrolled in a course.
func (h *CourseHandler) ListEnrolled(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	students, err := h.courseService.ListEnrolled(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, students)
}
