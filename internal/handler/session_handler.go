package handler

import (
	"net/http"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/response"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler serves the in-exam session API: start, timer, answers,
// and submit. Every route resolves the session and checks ownership before
// doing anything else.
type SessionHandler struct {
	sessionService *service.SessionService
	answerService  *service.AnswerService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, answerService *service.AnswerService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		answerService:  answerService,
	}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Start begins the attempt. The response carries the question paper, the
// authoritative deadline, and the remaining seconds at send time.
func (h *SessionHandler) Start(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	session, questions, err := h.sessionService.Start(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":           session,
		"questions":         questions,
		"remaining_seconds": session.RemainingSeconds(time.Now()),
	})
}

// Get returns the session row, auto-submitting it first if the deadline has
// already passed.
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	session, err := h.sessionService.GetOwned(ctx, id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	remaining, session, err := h.sessionService.RemainingSeconds(ctx, session)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":           session,
		"remaining_seconds": remaining,
	})
}

// Time returns the authoritative countdown. Clients must treat this value,
// not their local clock, as the truth.
func (h *SessionHandler) Time(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	session, err := h.sessionService.GetOwned(ctx, id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	remaining, session, err := h.sessionService.RemainingSeconds(ctx, session)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"remaining_seconds": remaining,
		"status":            session.Status,
	})
}

// SaveAnswer upserts one answer for a running session.
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.answerService.Save(c.Request.Context(), id, claims.UserID, req.QuestionID, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// SaveAnswerBatch upserts several answers atomically. Clients use it to
// flush answers queued while offline.
func (h *SessionHandler) SaveAnswerBatch(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.SaveAnswerBatchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.answerService.SaveBatch(c.Request.Context(), id, claims.UserID, req.Answers); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": len(req.Answers)})
}

// ListAnswers returns the session's saved answers keyed by question ID, so a
// reconnecting client can restore its answer sheet.
func (h *SessionHandler) ListAnswers(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	if _, err := h.sessionService.GetOwned(ctx, id, claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	answers, err := h.answerService.List(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, answers)
}

// Submit finalizes the session and returns the scored result. Repeating the
// call returns the same result.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	result, err := h.sessionService.Submit(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// AutoSubmit finalizes a session whose clock has run out. The client calls
// this when its display timer hits zero; the server re-checks the deadline
// and rejects the call if time actually remains.
func (h *SessionHandler) AutoSubmit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	result, err := h.sessionService.AutoSubmit(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Result returns the stored result of a finished session.
func (h *SessionHandler) Result(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	result, err := h.sessionService.ResultFor(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
