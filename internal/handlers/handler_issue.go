package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// issueHandler handles HTTP requests related to issues and their lifecycle.
type issueHandler struct {
	issueService portssvc.IssueSvcFacade
	statsService portssvc.StatisticsSvcFacade
}

// newIssueHandler creates a new issueHandler.
func newIssueHandler(is portssvc.IssueSvcFacade, ss portssvc.StatisticsSvcFacade) *issueHandler {
	return &issueHandler{
		issueService: is,
		statsService: ss,
	}
}

// RegisterIssueRoutes registers issue routes under a specific journal. All
// state-changing routes are CSRF protected; the middleware also hands the
// CSRF cookie out on reads.
func RegisterIssueRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newIssueHandler(services.Issue, services.Statistics)

	issues := rg.Group("/issues", middleware.CSRFProtection(cfg))
	{
		issues.GET("", h.listIssues)
		issues.GET("/current", h.getCurrentIssue)
		issues.POST("", h.createIssue)

		issue := issues.Group("/:issue_id")
		{
			issue.GET("", h.getIssue)
			issue.GET("/toc", h.getIssueTOC)
			issue.PUT("", h.updateIssue)
			issue.DELETE("", h.deleteIssue)
			issue.POST("/publish", h.publishIssue)
			issue.POST("/unpublish", h.unpublishIssue)
			issue.POST("/set-current", h.setCurrentIssue)
		}
	}
}

// respondIssueError maps common service errors to HTTP responses.
func respondIssueError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createIssue godoc
// @Summary Create an issue
// @Description Creates a new unpublished issue in the journal. Editor only.
// @Tags issues
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue body dto.CreateIssueRequest true "Issue details"
// @Success 201 {object} dto.IssueResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues [post]
func (h *issueHandler) createIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateIssue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	issue, err := h.issueService.CreateIssue(c.Request.Context(), journalID, req, creatorUserID)
	if err != nil {
		respondIssueError(c, logger, err, "create issue")
		return
	}

	logger.Info("Issue created successfully", slog.String("issue_id", issue.IssueID), slog.String("journal_id", journalID))
	c.JSON(http.StatusCreated, dto.ToIssueResponse(issue))
}

// listIssues godoc
// @Summary List issues
// @Description Retrieves a paginated list of the journal's issues. Non-members only see published issues.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Param   published query bool false "Filter by published state"
// @Param   volume query int false "Filter by volume"
// @Param   year query int false "Filter by year"
// @Success 200 {object} dto.ListIssuesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list issues"
// @Router /journals/{journal_id}/issues [get]
func (h *issueHandler) listIssues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var params dto.ListIssuesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListIssues", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	// Anonymous readers are fine here; the service narrows them to
	// published issues.
	userID, _ := middleware.GetUserIDFromContext(c)

	resp, err := h.issueService.ListIssues(c.Request.Context(), journalID, userID, params)
	if err != nil {
		respondIssueError(c, logger, err, "list issues")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getIssue godoc
// @Summary Get an issue
// @Description Retrieves an issue. Published issues are public; unpublished issues require journal membership.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Success 200 {object} dto.IssueResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Issue not found"
// @Router /journals/{journal_id}/issues/{issue_id} [get]
func (h *issueHandler) getIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	userID, _ := middleware.GetUserIDFromContext(c)

	issue, err := h.issueService.GetIssueByID(c.Request.Context(), journalID, issueID, userID)
	if err != nil {
		respondIssueError(c, logger, err, "retrieve issue")
		return
	}

	if issue.Published {
		h.statsService.RecordUsageEvent(c.Request.Context(), journalID, domain.AssocTypeIssue, issue.IssueID)
	}

	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

// getIssueTOC godoc
// @Summary Get an issue's table of contents
// @Description Lists the publications scheduled or published into the issue. Readers only see published articles of published issues; journal staff see everything attached.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Success 200 {array} dto.PublicationResponse
// @Failure 404 {object} map[string]string "Issue not found"
// @Router /journals/{journal_id}/issues/{issue_id}/toc [get]
func (h *issueHandler) getIssueTOC(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	userID, _ := middleware.GetUserIDFromContext(c)

	publications, err := h.issueService.GetIssueTOC(c.Request.Context(), journalID, issueID, userID)
	if err != nil {
		respondIssueError(c, logger, err, "retrieve issue table of contents")
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicationResponses(publications))
}

// getCurrentIssue godoc
// @Summary Get the current issue
// @Description Retrieves the journal's current issue.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 200 {object} dto.IssueResponse
// @Failure 404 {object} map[string]string "No current issue"
// @Router /journals/{journal_id}/issues/current [get]
func (h *issueHandler) getCurrentIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	issue, err := h.issueService.GetCurrentIssue(c.Request.Context(), journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current issue"})
			return
		}
		logger.Error("Failed to retrieve current issue", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve current issue"})
		return
	}

	h.statsService.RecordUsageEvent(c.Request.Context(), journalID, domain.AssocTypeIssue, issue.IssueID)
	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

// updateIssue godoc
// @Summary Update issue metadata
// @Description Applies a partial update to issue metadata. Editor only.
// @Tags issues
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Param   issue body dto.UpdateIssueRequest true "Fields to update"
// @Success 200 {object} dto.IssueResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Issue not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues/{issue_id} [put]
func (h *issueHandler) updateIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateIssue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	issue, err := h.issueService.UpdateIssue(c.Request.Context(), journalID, issueID, req, userID)
	if err != nil {
		respondIssueError(c, logger, err, "update issue")
		return
	}

	logger.Info("Issue updated successfully", slog.String("issue_id", issueID))
	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

// publishIssue godoc
// @Summary Publish an issue
// @Description Publishes an issue: assigns identifiers, stamps the publication date, makes it current, moves its scheduled articles to published and notifies readers. When DOI assignment needs consent the response asks for confirmation and nothing is changed.
// @Tags issues
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Param   options body dto.PublishIssueRequest false "Publish options"
// @Success 200 {object} dto.IssueLifecycleResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden or CSRF failure"
// @Failure 404 {object} map[string]string "Issue not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues/{issue_id}/publish [post]
func (h *issueHandler) publishIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	var req dto.PublishIssueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for PublishIssue", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.issueService.PublishIssue(c.Request.Context(), journalID, issueID, req, userID)
	if err != nil {
		respondIssueError(c, logger, err, "publish issue")
		return
	}

	if result.NeedsConfirmation {
		logger.Info("Publish requires confirmation", slog.String("issue_id", issueID))
	} else {
		logger.Info("Issue published", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	}
	c.JSON(http.StatusOK, result)
}

// unpublishIssue godoc
// @Summary Unpublish an issue
// @Description Reverts a published issue to unpublished, re-derives the journal's current issue and returns the issue's articles to scheduled.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Success 200 {object} dto.IssueLifecycleResult
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden or CSRF failure"
// @Failure 404 {object} map[string]string "Issue not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues/{issue_id}/unpublish [post]
func (h *issueHandler) unpublishIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.issueService.UnpublishIssue(c.Request.Context(), journalID, issueID, userID)
	if err != nil {
		respondIssueError(c, logger, err, "unpublish issue")
		return
	}

	logger.Info("Issue unpublished", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	c.JSON(http.StatusOK, result)
}

// setCurrentIssue godoc
// @Summary Set the current issue
// @Description Makes the issue the journal's current issue. The issue does not have to be published.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Success 200 {object} dto.IssueLifecycleResult
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden or CSRF failure"
// @Failure 404 {object} map[string]string "Issue not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues/{issue_id}/set-current [post]
func (h *issueHandler) setCurrentIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.issueService.SetCurrentIssue(c.Request.Context(), journalID, issueID, userID)
	if err != nil {
		respondIssueError(c, logger, err, "set current issue")
		return
	}

	logger.Info("Current issue updated", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	c.JSON(http.StatusOK, result)
}

// deleteIssue godoc
// @Summary Delete an issue
// @Description Removes an issue, detaches its articles back to the queue and re-derives the journal's current issue.
// @Tags issues
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   issue_id path string true "Issue ID"
// @Success 200 {object} dto.IssueLifecycleResult
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden or CSRF failure"
// @Failure 404 {object} map[string]string "Issue not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/issues/{issue_id} [delete]
func (h *issueHandler) deleteIssue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	issueID := c.Param("issue_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.issueService.DeleteIssue(c.Request.Context(), journalID, issueID, userID)
	if err != nil {
		respondIssueError(c, logger, err, "delete issue")
		return
	}

	logger.Info("Issue deleted", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	c.JSON(http.StatusOK, result)
}
