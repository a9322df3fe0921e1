package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
)

// failErr maps domain and repository errors onto the response envelope.
// Unknown errors are logged and reported as 500.
func failErr(c *gin.Context, log zerolog.Logger, err error) {
	var (
		avail   *quiz.AvailabilityError
		invalid *quiz.InvalidAnswerError
	)

	switch {
	case errors.As(err, &avail):
		code := response.ErrQuizNotOpen
		if avail.Reason == quiz.ReasonExpired {
			code = response.ErrQuizExpired
		}
		response.FailWithFields(c, http.StatusForbidden, code, map[string]string{
			"reason":   string(avail.Reason),
			"boundary": avail.Boundary.UTC().Format(time.RFC3339),
		})
	case errors.As(err, &invalid):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidAnswer, map[string]string{
			"question_id": strconv.Itoa(invalid.QuestionID),
			"detail":      invalid.Reason,
		})
	case errors.Is(err, quiz.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, quiz.ErrEmptyQuestionSet):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, quiz.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, quiz.ErrSessionSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, quiz.ErrSessionNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotSessionOwner)
	case errors.Is(err, service.ErrExportNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExportNotFound)
	case errors.Is(err, service.ErrExportNotReady):
		response.Fail(c, http.StatusConflict, response.ErrExportNotReady)
	case errors.Is(err, service.ErrInvalidMonth):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidMonth)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrUserExists):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, repository.ErrInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", response.RequestID(c)).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
