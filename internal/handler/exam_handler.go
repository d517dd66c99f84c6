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

// ExamHandler serves examiner exam authoring and results.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func examID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Create registers a new DRAFT exam.
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, exam)
}

// Get returns one of the examiner's exams.
func (h *ExamHandler) Get(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	exam, err := h.examService.GetOwned(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// List returns a page of the examiner's exams.
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	limit, offset, page := parsePagination(c)

	exams, total, err := h.examService.ListByExaminer(c.Request.Context(), claims.UserID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, exams, buildPagination(page, limit, total))
}

// Update edits a DRAFT exam.
func (h *ExamHandler) Update(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	exam, err := h.examService.Update(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// Publish freezes a DRAFT exam and opens it to its window.
func (h *ExamHandler) Publish(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	exam, err := h.examService.Publish(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// Archive retires a PUBLISHED exam from the lobby.
func (h *ExamHandler) Archive(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	exam, err := h.examService.Archive(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// AddQuestion appends a question to a DRAFT exam.
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	question, err := h.examService.AddQuestion(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, question)
}

// ReplaceQuestions swaps a DRAFT exam's entire question set.
func (h *ExamHandler) ReplaceQuestions(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	questions, err := h.examService.ReplaceQuestions(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// ListQuestions returns the exam's questions including grading keys.
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	questions, err := h.examService.ListQuestions(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// Results returns a page of session results for the exam.
func (h *ExamHandler) Results(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	limit, offset, page := parsePagination(c)

	results, total, err := h.examService.Results(c.Request.Context(), id, claims.UserID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, results, buildPagination(page, limit, total))
}
