package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
)

// ExportHandler runs asynchronous CSV exports of attempt history.
type ExportHandler struct {
	exportService *service.ExportService
	log           zerolog.Logger
}

func NewExportHandler(exportService *service.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		log:           log.With().Str("component", "export_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/exports
func (h *ExportHandler) Start(c *gin.Context) {
	h.start(c, middleware.GetClaims(c).UserID)
}

// StartAll godoc
// POST /api/v1/admin/exports
func (h *ExportHandler) StartAll(c *gin.Context) {
	h.start(c, 0)
}

func (h *ExportHandler) start(c *gin.Context, userID int) {
	job, err := h.exportService.Start(c.Request.Context(), userID)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"export": job})
}

// Status godoc
// GET /api/v1/exports/:job_id
func (h *ExportHandler) Status(c *gin.Context) {
	claims := middleware.GetClaims(c)
	job, err := h.exportService.Status(c.Request.Context(), c.Param("job_id"), claims.UserID, claims.IsAdmin())
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"export": job})
}

// Download godoc
// GET /api/v1/exports/:job_id/download
// The body is brotli-compressed when the client accepts it.
func (h *ExportHandler) Download(c *gin.Context) {
	claims := middleware.GetClaims(c)
	jobID := c.Param("job_id")

	body, err := h.exportService.Download(c.Request.Context(), jobID, claims.UserID, claims.IsAdmin())
	if err != nil {
		failErr(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attempts-`+jobID+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
