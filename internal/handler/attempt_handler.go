package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
)

// AttemptHandler serves a learner's history and performance analytics.
type AttemptHandler struct {
	attemptService   *service.AttemptService
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
}

func NewAttemptHandler(attemptService *service.AttemptService, analyticsService *service.AnalyticsService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attemptService:   attemptService,
		analyticsService: analyticsService,
		log:              log.With().Str("component", "attempt_handler").Logger(),
	}
}

// History godoc
// GET /api/v1/attempts?page=1&per_page=20&quiz_id=3
func (h *AttemptHandler) History(c *gin.Context) {
	var q model.AttemptQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	filter := q.Filter(middleware.GetClaims(c).UserID)
	history, err := h.attemptService.History(c.Request.Context(), filter)
	if err != nil {
		failErr(c, h.log, err)
		return
	}

	totalPages := (history.Total + filter.PerPage - 1) / filter.PerPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"attempts":      history.Attempts,
		"average_score": history.AverageScore,
		"pass_rate":     history.PassRate,
	}, &response.Pagination{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalItems: history.Total,
		TotalPages: totalPages,
	})
}

// Summary godoc
// GET /api/v1/attempts/summary
func (h *AttemptHandler) Summary(c *gin.Context) {
	sum, err := h.analyticsService.UserSummary(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": sum})
}

// MonthlyReport godoc
// GET /api/v1/attempts/reports/:month
func (h *AttemptHandler) MonthlyReport(c *gin.Context) {
	report, err := h.analyticsService.MonthlyReport(c.Request.Context(), middleware.GetClaims(c).UserID, c.Param("month"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
