package handler

import (
	"net/http"

	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentPortalHandler serves the authenticated student dashboard: the exam
// lobby and the password gate into a session.
type StudentPortalHandler struct {
	studentService *service.StudentService
	accessGate     *service.AccessGateService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(studentService *service.StudentService, accessGate *service.AccessGateService) *StudentPortalHandler {
	return &StudentPortalHandler{
		studentService: studentService,
		accessGate:     accessGate,
	}
}

// Lobby lists published exams for the student's courses with attempt counts.
func (h *StudentPortalHandler) Lobby(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.studentService.Lobby(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exams)
}

// Profile returns the logged-in student's own account.
func (h *StudentPortalHandler) Profile(c *gin.Context) {
	claims := middleware.GetClaims(c)

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// ValidateAccess checks the exam password and attempt policy and returns the
// student's session for the exam. Re-validating while a session is open
// returns that same session.
func (h *StudentPortalHandler) ValidateAccess(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ValidateAccessRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	session, err := h.accessGate.ValidateExamAccess(c.Request.Context(), examID, claims.UserID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}
