package handler

import (
	"net/http"

	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves student and examiner login.
type AuthHandler struct {
	studentService  *service.StudentService
	examinerService *service.ExaminerService
	authService     *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(studentService *service.StudentService, examinerService *service.ExaminerService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		studentService:  studentService,
		examinerService: examinerService,
		authService:     authService,
	}
}

// StudentLogin authenticates a student by matric number and returns a token
// together with the exam lobby. Only one device may hold a live student
// login at a time.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := c.Request.Context()
	student, err := h.studentService.Authenticate(ctx, req.MatricNo)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateStudentToken(ctx, student.ID, student.MatricNo)
	if err != nil {
		respondError(c, err)
		return
	}

	lobby, err := h.studentService.Lobby(ctx, student.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   token,
		"student": student,
		"exams":   lobby,
	})
}

// StudentLogout releases the student's single-device login slot.
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.authService.ResetStudentLogin(c.Request.Context(), claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// ExaminerProfile returns the authenticated examiner's own record.
func (h *AuthHandler) ExaminerProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examiner, err := h.examinerService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, examiner)
}

// ExaminerLogin authenticates an examiner by email and password.
func (h *AuthHandler) ExaminerLogin(c *gin.Context) {
	var req model.ExaminerLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	examiner, err := h.examinerService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateExaminerToken(examiner.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":    token,
		"examiner": examiner,
	})
}
