package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
)

// SessionHandler exposes quiz-taking over REST. The WebSocket stream in
// WSHandler offers the same actions plus live ticks.
type SessionHandler struct {
	sessions *service.QuizSessionService
	log      zerolog.Logger
}

func NewSessionHandler(sessions *service.QuizSessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      log.With().Str("component", "session_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/quizzes/:quiz_id/sessions
// Resumes the learner's in-progress session on the quiz if there is one.
func (h *SessionHandler) Start(c *gin.Context) {
	quizID, ok := paramID(c, "quiz_id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	sess, err := h.sessions.Start(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": sess.View()})
}

// Get godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(middleware.GetClaims(c).UserID, id)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.View()})
}

// Answer godoc
// PUT /api/v1/sessions/:session_id/answers
func (h *SessionHandler) Answer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.MissingSlot() {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"option": "option or option_index is required"})
		return
	}

	view, err := h.sessions.Answer(middleware.GetClaims(c).UserID, id, req.QuestionID, req.Slot())
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Next godoc
// POST /api/v1/sessions/:session_id/next
func (h *SessionHandler) Next(c *gin.Context) {
	h.navigate(c, service.NavNext, 0)
}

// Previous godoc
// POST /api/v1/sessions/:session_id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	h.navigate(c, service.NavPrevious, 0)
}

// GoTo godoc
// POST /api/v1/sessions/:session_id/goto
func (h *SessionHandler) GoTo(c *gin.Context) {
	var req model.GoToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.navigate(c, service.NavGoTo, *req.Index)
}

func (h *SessionHandler) navigate(c *gin.Context, action service.NavAction, index int) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.sessions.Navigate(middleware.GetClaims(c).UserID, id, action, index)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
// Repeated calls return the same result. When storing the attempt failed
// the result is still returned with 202 and metadata.persist_error set.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	res, err := h.sessions.Submit(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	var transport *quiz.SubmissionTransportError
	switch {
	case errors.As(err, &transport):
		h.log.Warn().Err(err).Str("session_id", id.String()).Msg("Attempt not stored")
		response.Accepted(c, gin.H{"result": res}, response.ErrPersistFailed)
	case err != nil:
		failErr(c, h.log, err)
	default:
		response.Success(c, http.StatusOK, gin.H{"result": res})
	}
}

// Resubmit godoc
// POST /api/v1/sessions/:session_id/resubmit
func (h *SessionHandler) Resubmit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	err := h.sessions.Resubmit(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	var transport *quiz.SubmissionTransportError
	switch {
	case errors.As(err, &transport):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrPersistFailed)
	case err != nil:
		failErr(c, h.log, err)
	default:
		response.Success(c, http.StatusOK, gin.H{"message": "attempt stored"})
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
