package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
)

// AdminHandler serves platform analytics.
type AdminHandler struct {
	analyticsService *service.AnalyticsService
	sessionService   *service.QuizSessionService
	log              zerolog.Logger
}

func NewAdminHandler(analyticsService *service.AnalyticsService, sessionService *service.QuizSessionService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		sessionService:   sessionService,
		log:              log.With().Str("component", "admin_handler").Logger(),
	}
}

// Dashboard godoc
// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.analyticsService.AdminDashboard(c.Request.Context())
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dashboard": d})
}

// ActiveUsers godoc
// GET /api/v1/admin/active-users
func (h *AdminHandler) ActiveUsers(c *gin.Context) {
	n, err := h.sessionService.ActiveLearners(c.Request.Context())
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"active_users": n})
}
