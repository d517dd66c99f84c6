package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/middleware"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/chasfatacademy/exam-backend/internal/service"
	ws "github.com/chasfatacademy/exam-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler serves the low-latency session stream: the server pushes the
// authoritative countdown every second, while the client can send save,
// submit, and ping actions on the same connection.
type WSHandler struct {
	sessionService *service.SessionService
	answerService  *service.AnswerService
	log            zerolog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, answerService *service.AnswerService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		answerService:  answerService,
		log:            log.With().Str("component", "ws_handler").Logger(),
	}
}

// SessionStream upgrades the connection, ticks the remaining time every
// second, and dispatches client action frames. When the session reaches a
// terminal state the stream sends one finalized or graded event and closes.
func (h *WSHandler) SessionStream(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if session.Status.IsTerminal() {
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized, Status: string(session.Status)})
		return
	}

	// Reader goroutine: one frame at a time, handed to the main loop so all
	// writes stay on a single goroutine.
	requests := make(chan ws.Request)
	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(done)
		for {
			var req ws.Request
			if err := ws.ReadJSON(conn, &req); err != nil {
				return
			}
			select {
			case requests <- req:
			case <-stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case req := <-requests:
			if closed := h.dispatch(ctx, conn, id, claims.UserID, req); closed {
				return
			}
		case <-ticker.C:
			if closed := h.pushClock(ctx, conn, id, claims.UserID); closed {
				return
			}
		}
	}
}

// dispatch handles one client action frame. It reports true when the stream
// should close.
func (h *WSHandler) dispatch(ctx context.Context, conn *websocket.Conn, id uuid.UUID, studentID int, req ws.Request) bool {
	switch req.Action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		return false

	case ws.ActionSave:
		qID, err := uuid.Parse(req.QuestionID)
		if err != nil {
			ws.WriteError(conn, "invalid question_id")
			return false
		}
		if err := h.answerService.Save(ctx, id, studentID, qID, req.Answer); err != nil {
			return h.saveFailed(ctx, conn, id, studentID, err)
		}
		ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QuestionID: req.QuestionID})
		return false

	case ws.ActionSubmit:
		result, err := h.sessionService.Submit(ctx, id, studentID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotStarted) {
				ws.WriteError(conn, "session has not been started")
				return false
			}
			h.log.Error().Err(err).Str("session_id", id.String()).Msg("Submit over stream failed")
			ws.WriteError(conn, "submit failed")
			return false
		}
		status := string(model.SessionStatusSubmitted)
		if session, err := h.sessionService.GetOwned(ctx, id, studentID); err == nil {
			status = string(session.Status)
		}
		ws.WriteTyped(conn, ws.GradedResponse{
			Event:      ws.EventGraded,
			Status:     status,
			RawScore:   result.RawScore,
			Percentage: result.Percentage,
			Pass:       result.Pass,
		})
		return true

	default:
		ws.WriteError(conn, "unknown action: "+req.Action)
		return false
	}
}

// saveFailed maps a rejected save to a stream event. A terminal rejection
// means the session was just finalized under the client, so the stream sends
// the finalized event and closes.
func (h *WSHandler) saveFailed(ctx context.Context, conn *websocket.Conn, id uuid.UUID, studentID int, err error) bool {
	switch {
	case errors.Is(err, service.ErrSessionTerminal):
		status := string(model.SessionStatusAutoSubmitted)
		if session, gerr := h.sessionService.GetOwned(ctx, id, studentID); gerr == nil {
			status = string(session.Status)
		}
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized, Status: status})
		return true
	case errors.Is(err, service.ErrSessionNotStarted):
		ws.WriteError(conn, "session has not been started")
	case errors.Is(err, service.ErrUnknownQuestion):
		ws.WriteError(conn, "question is not part of this exam")
	default:
		h.log.Error().Err(err).Str("session_id", id.String()).Msg("Save over stream failed")
		ws.WriteError(conn, "save failed")
	}
	return false
}

// pushClock sends one countdown tick. It reports true when the session has
// reached a terminal state and the stream should close.
func (h *WSHandler) pushClock(ctx context.Context, conn *websocket.Conn, id uuid.UUID, studentID int) bool {
	remaining, ok, err := h.sessionService.Clock(ctx, id)
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", id.String()).Msg("Clock read failed")
		return false
	}
	if !ok {
		// No clock snapshot means the session is not running anymore, or
		// was never started on this stream.
		session, err := h.sessionService.GetOwned(ctx, id, studentID)
		if err != nil {
			ws.WriteError(conn, "session unavailable")
			return true
		}
		if session.Status.IsTerminal() {
			ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized, Status: string(session.Status)})
			return true
		}
		remaining = session.RemainingSeconds(time.Now())
	}

	if remaining <= 0 {
		session, err := h.sessionService.GetOwned(ctx, id, studentID)
		if err != nil {
			ws.WriteError(conn, "session unavailable")
			return true
		}
		if _, session, err = h.sessionService.RemainingSeconds(ctx, session); err != nil {
			h.log.Error().Err(err).Str("session_id", id.String()).Msg("Auto-submit on stream failed")
			ws.WriteError(conn, "failed to finalize session")
			return true
		}
		status := session.Status
		if !status.IsTerminal() {
			status = model.SessionStatusAutoSubmitted
		}
		ws.WriteTyped(conn, ws.FinalizedResponse{Event: ws.EventFinalized, Status: string(status)})
		return true
	}

	if err := ws.WriteTyped(conn, ws.ClockResponse{
		Event:            ws.EventClock,
		RemainingSeconds: remaining,
		ServerTime:       time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return true
	}
	return false
}
