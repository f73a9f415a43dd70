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
	"github.com/gin-gonic/gin"
)

// submissionHandler handles HTTP requests related to submissions, their
// publication versions and galleys.
type submissionHandler struct {
	submissionService portssvc.SubmissionSvcFacade
	statsService      portssvc.StatisticsSvcFacade
}

// newSubmissionHandler creates a new submissionHandler.
func newSubmissionHandler(ss portssvc.SubmissionSvcFacade, stats portssvc.StatisticsSvcFacade) *submissionHandler {
	return &submissionHandler{
		submissionService: ss,
		statsService:      stats,
	}
}

// registerSubmissionRoutes registers submission, publication and galley routes
// under a specific journal.
func registerSubmissionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newSubmissionHandler(services.Submission, services.Statistics)

	submissions := rg.Group("/submissions")
	{
		submissions.GET("", h.listSubmissions)
		submissions.POST("", h.createSubmission)

		submission := submissions.Group("/:submission_id")
		{
			submission.GET("", h.getSubmission)
			submission.POST("/decline", h.declineSubmission)
			submission.POST("/versions", h.createPublicationVersion)
		}
	}

	publications := rg.Group("/publications/:publication_id")
	{
		publications.POST("/schedule", h.schedulePublication)
		publications.POST("/unschedule", h.unschedulePublication)

		galleys := publications.Group("/galleys")
		{
			galleys.GET("", h.listGalleys)
			galleys.POST("", h.addGalley)
			galleys.DELETE("/:galley_id", h.removeGalley)
		}
	}
}

// respondSubmissionError maps common service errors to HTTP responses.
func respondSubmissionError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
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

// createSubmission godoc
// @Summary Create a submission
// @Description Creates a new queued submission with its first publication version. Journal members only.
// @Tags submissions
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   submission body dto.CreateSubmissionRequest true "Submission details"
// @Success 201 {object} dto.SubmissionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /journals/{journal_id}/submissions [post]
func (h *submissionHandler) createSubmission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubmission", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	submission, err := h.submissionService.CreateSubmission(c.Request.Context(), journalID, req, creatorUserID)
	if err != nil {
		respondSubmissionError(c, logger, err, "create submission")
		return
	}

	logger.Info("Submission created successfully", slog.String("submission_id", submission.SubmissionID), slog.String("journal_id", journalID))
	c.JSON(http.StatusCreated, submission)
}

// listSubmissions godoc
// @Summary List submissions
// @Description Retrieves the journal's submissions, optionally narrowed by status or issue. Journal staff only.
// @Tags submissions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   status query []string false "Filter by status" collectionFormat(multi)
// @Param   issueID query string false "Filter by issue"
// @Success 200 {object} dto.ListSubmissionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /journals/{journal_id}/submissions [get]
func (h *submissionHandler) listSubmissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var params dto.ListSubmissionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListSubmissions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.submissionService.ListSubmissions(c.Request.Context(), journalID, userID, params)
	if err != nil {
		respondSubmissionError(c, logger, err, "list submissions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getSubmission godoc
// @Summary Get a submission
// @Description Retrieves a submission with its publication versions. Published submissions are public; others require journal staff access.
// @Tags submissions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   submission_id path string true "Submission ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Submission not found"
// @Router /journals/{journal_id}/submissions/{submission_id} [get]
func (h *submissionHandler) getSubmission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	submissionID := c.Param("submission_id")

	userID, _ := middleware.GetUserIDFromContext(c)

	submission, err := h.submissionService.GetSubmissionByID(c.Request.Context(), journalID, submissionID, userID)
	if err != nil {
		respondSubmissionError(c, logger, err, "retrieve submission")
		return
	}

	if submission.Status == string(domain.SubmissionPublished) {
		h.statsService.RecordUsageEvent(c.Request.Context(), journalID, domain.AssocTypeSubmission, submission.SubmissionID)
	}

	c.JSON(http.StatusOK, submission)
}

// declineSubmission godoc
// @Summary Decline a submission
// @Description Marks a submission as declined. Editor only.
// @Tags submissions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   submission_id path string true "Submission ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 409 {object} map[string]string "Submission already published"
// @Security BearerAuth
// @Router /journals/{journal_id}/submissions/{submission_id}/decline [post]
func (h *submissionHandler) declineSubmission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	submissionID := c.Param("submission_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.submissionService.DeclineSubmission(c.Request.Context(), journalID, submissionID, userID); err != nil {
		respondSubmissionError(c, logger, err, "decline submission")
		return
	}

	logger.Info("Submission declined", slog.String("submission_id", submissionID))
	c.Status(http.StatusNoContent)
}

// createPublicationVersion godoc
// @Summary Create a new publication version
// @Description Adds a new publication version to a submission, copied from the latest version. Editor only.
// @Tags submissions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   submission_id path string true "Submission ID"
// @Success 201 {object} dto.PublicationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Submission not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/submissions/{submission_id}/versions [post]
func (h *submissionHandler) createPublicationVersion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	submissionID := c.Param("submission_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	publication, err := h.submissionService.CreatePublicationVersion(c.Request.Context(), journalID, submissionID, userID)
	if err != nil {
		respondSubmissionError(c, logger, err, "create publication version")
		return
	}

	logger.Info("Publication version created", slog.String("submission_id", submissionID), slog.Int("version", publication.Version))
	c.JSON(http.StatusCreated, dto.ToPublicationResponse(publication))
}

// schedulePublication godoc
// @Summary Schedule a publication
// @Description Assigns a publication to an issue, moving it to scheduled (or straight to published when the issue is already out). Editor only.
// @Tags submissions
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   publication_id path string true "Publication ID"
// @Param   schedule body dto.SchedulePublicationRequest true "Target issue"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Publication or issue not found"
// @Failure 409 {object} map[string]string "Publication already published"
// @Security BearerAuth
// @Router /journals/{journal_id}/publications/{publication_id}/schedule [post]
func (h *submissionHandler) schedulePublication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	publicationID := c.Param("publication_id")

	var req dto.SchedulePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SchedulePublication", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.submissionService.SchedulePublication(c.Request.Context(), journalID, publicationID, req.IssueID, userID); err != nil {
		respondSubmissionError(c, logger, err, "schedule publication")
		return
	}

	logger.Info("Publication scheduled", slog.String("publication_id", publicationID), slog.String("issue_id", req.IssueID))
	c.Status(http.StatusNoContent)
}

// unschedulePublication godoc
// @Summary Unschedule a publication
// @Description Detaches a scheduled publication from its issue, returning it to the queue. Editor only.
// @Tags submissions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   publication_id path string true "Publication ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Publication not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/publications/{publication_id}/unschedule [post]
func (h *submissionHandler) unschedulePublication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	publicationID := c.Param("publication_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.submissionService.UnschedulePublication(c.Request.Context(), journalID, publicationID, userID); err != nil {
		respondSubmissionError(c, logger, err, "unschedule publication")
		return
	}

	logger.Info("Publication unscheduled", slog.String("publication_id", publicationID))
	c.Status(http.StatusNoContent)
}

// addGalley godoc
// @Summary Attach a galley
// @Description Attaches a galley (a representation such as a PDF or a remote link) to a publication. Journal staff only.
// @Tags galleys
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   publication_id path string true "Publication ID"
// @Param   galley body dto.CreateGalleyRequest true "Galley details"
// @Success 201 {object} dto.GalleyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Publication not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/publications/{publication_id}/galleys [post]
func (h *submissionHandler) addGalley(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	publicationID := c.Param("publication_id")

	var req dto.CreateGalleyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddGalley", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	galley, err := h.submissionService.AddGalley(c.Request.Context(), journalID, publicationID, req, userID)
	if err != nil {
		respondSubmissionError(c, logger, err, "add galley")
		return
	}

	logger.Info("Galley added", slog.String("publication_id", publicationID), slog.String("galley_id", galley.GalleyID))
	c.JSON(http.StatusCreated, dto.ToGalleyResponse(galley))
}

// listGalleys godoc
// @Summary List galleys
// @Description Retrieves the galleys of a publication in display order. Public for published publications.
// @Tags galleys
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   publication_id path string true "Publication ID"
// @Success 200 {array} dto.GalleyResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Publication not found"
// @Router /journals/{journal_id}/publications/{publication_id}/galleys [get]
func (h *submissionHandler) listGalleys(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	publicationID := c.Param("publication_id")

	userID, _ := middleware.GetUserIDFromContext(c)

	galleys, err := h.submissionService.ListGalleys(c.Request.Context(), journalID, publicationID, userID)
	if err != nil {
		respondSubmissionError(c, logger, err, "list galleys")
		return
	}

	c.JSON(http.StatusOK, dto.ToGalleyResponses(galleys))
}

// removeGalley godoc
// @Summary Remove a galley
// @Description Deletes a galley from a publication. Journal staff only.
// @Tags galleys
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   publication_id path string true "Publication ID"
// @Param   galley_id path string true "Galley ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Galley not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/publications/{publication_id}/galleys/{galley_id} [delete]
func (h *submissionHandler) removeGalley(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	publicationID := c.Param("publication_id")
	galleyID := c.Param("galley_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.submissionService.RemoveGalley(c.Request.Context(), journalID, publicationID, galleyID, userID); err != nil {
		respondSubmissionError(c, logger, err, "remove galley")
		return
	}

	logger.Info("Galley removed", slog.String("publication_id", publicationID), slog.String("galley_id", galleyID))
	c.Status(http.StatusNoContent)
}
