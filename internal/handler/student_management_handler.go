package handler

import (
	"net/http"
	"strconv"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// StudentManagementHandler serves examiner administration of student accounts.
type StudentManagementHandler struct {
	studentService *service.StudentService
	authService    *service.AuthService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(studentService *service.StudentService, authService *service.AuthService) *StudentManagementHandler {
	return &StudentManagementHandler{
		studentService: studentService,
		authService:    authService,
	}
}

func studentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// Create registers a new student account.
func (h *StudentManagementHandler) Create(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// List returns a page of student accounts.
func (h *StudentManagementHandler) List(c *gin.Context) {
	limit, offset, page := parsePagination(c)

	students, total, err := h.studentService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, students, buildPagination(page, limit, total))
}

// Deactivate disables a student account without deleting its history.
func (h *StudentManagementHandler) Deactivate(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	if err := h.studentService.SetActive(c.Request.Context(), id, false); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_active": false})
}

// Activate re-enables a student account.
func (h *StudentManagementHandler) Activate(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	if err := h.studentService.SetActive(c.Request.Context(), id, true); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_active": true})
}

// ResetLogin clears a student's single-device login slot so they can sign in
// again after losing their device.
func (h *StudentManagementHandler) ResetLogin(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	if err := h.authService.ResetStudentLogin(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
