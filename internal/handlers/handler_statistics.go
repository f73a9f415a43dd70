package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statisticsHandler handles HTTP requests for usage metrics.
type statisticsHandler struct {
	statsService portssvc.StatisticsSvcFacade
}

// newStatisticsHandler creates a new statisticsHandler.
func newStatisticsHandler(ss portssvc.StatisticsSvcFacade) *statisticsHandler {
	return &statisticsHandler{
		statsService: ss,
	}
}

// registerStatisticsRoutes registers the metric retrieval route under a
// specific journal.
func registerStatisticsRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newStatisticsHandler(services.Statistics)

	rg.GET("/stats", h.getMetrics)
}

// registerStatsCompileRoute registers the platform-level route that closes
// the staged usage-event batch and enqueues its compile job.
func registerStatsCompileRoute(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newStatisticsHandler(services.Statistics)

	rg.POST("/stats/compile", h.enqueueCompileJob)
}

// getMetrics godoc
// @Summary Get usage metrics
// @Description Retrieves compiled daily view counts for an issue or submission. Journal staff only.
// @Tags statistics
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   assocType query string true "Entity kind" Enums(ISSUE, SUBMISSION)
// @Param   assocID query string true "Entity ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.GetMetricsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /journals/{journal_id}/stats [get]
func (h *statisticsHandler) getMetrics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var params dto.GetMetricsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for GetMetrics", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Binding already validated the date format.
	from, _ := time.Parse("2006-01-02", params.From)
	to, _ := time.Parse("2006-01-02", params.To)
	assocType := domain.AssocType(params.AssocType)

	rows, err := h.statsService.GetMetrics(c.Request.Context(), journalID, assocType, params.AssocID, from, to, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to retrieve metrics", slog.String("error", err.Error()), slog.String("journal_id", journalID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve metrics"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGetMetricsResponse(assocType, params.AssocID, rows))
}

// enqueueCompileJob godoc
// @Summary Enqueue usage stats compilation
// @Description Closes the current staged usage-event batch and enqueues a background job that compiles it into metrics.
// @Tags statistics
// @Produce  json
// @Success 202 {object} dto.EnqueueStatsJobResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Nothing staged"
// @Failure 500 {object} map[string]string "Failed to enqueue job"
// @Security BearerAuth
// @Router /stats/compile [post]
func (h *statisticsHandler) enqueueCompileJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loadID, err := h.statsService.EnqueueUsageStatsJob(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No usage events staged"})
			return
		}
		logger.Error("Failed to enqueue usage stats job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue job"})
		return
	}

	logger.Info("Usage stats job enqueued", slog.String("load_id", loadID))
	c.JSON(http.StatusAccepted, dto.EnqueueStatsJobResponse{LoadID: loadID})
}
