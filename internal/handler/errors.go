package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// respondError maps service sentinel errors to HTTP status and error codes.
// Anything unmapped is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrStudentInactive):
		response.Fail(c, http.StatusForbidden, response.ErrStudentInactive)
	case errors.Is(err, service.ErrLoginAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNotSessionOwner),
		errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrWrongPassword):
		response.Fail(c, http.StatusUnauthorized, response.ErrWrongPassword)
	case errors.Is(err, service.ErrAttemptsExhausted):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptsExhausted)
	case errors.Is(err, service.ErrOutsideWindow):
		response.Fail(c, http.StatusForbidden, response.ErrOutsideWindow)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrSessionTerminal):
		response.Fail(c, http.StatusConflict, response.ErrSessionTerminal)
	case errors.Is(err, service.ErrSessionNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, service.ErrDeadlineNotReached):
		response.Fail(c, http.StatusConflict, response.ErrDeadlineNotReached)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrUnknownQuestion)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parsePagination reads page and per_page query params with sane bounds.
func parsePagination(c *gin.Context) (limit, offset, page int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return perPage, (page - 1) * perPage, page
}

// buildPagination assembles the response pagination block.
func buildPagination(page, perPage, total int) *response.Pagination {
	totalPages := (total + perPage - 1) / perPage
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
