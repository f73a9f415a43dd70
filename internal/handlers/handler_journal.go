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

// journalHandler handles HTTP requests related to journals and their members.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes for journals and their members, and
// nests the issue, submission, statistics and subscription routes under a
// specific journal.
func registerJournalRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newJournalHandler(services.Journal)

	journalsTopLevel := rg.Group("/journals")
	{
		journalsTopLevel.POST("", h.createJournal)
		journalsTopLevel.GET("", h.listUserJournals)
		journalsTopLevel.GET("/path/:path", h.getJournalByPath)
	}

	journalSpecific := rg.Group("/journals/:journal_id")
	{
		journalSpecific.GET("", h.getJournal)
		journalSpecific.PUT("/settings", h.updateJournalSettings)
		journalSpecific.POST("/disable", h.disableJournal)
		journalSpecific.POST("/enable", h.enableJournal)

		journalUsers := journalSpecific.Group("/users")
		{
			journalUsers.GET("", h.listJournalUsers)
			journalUsers.POST("", h.addUserToJournal)
			journalUsers.PUT("/:user_id", h.updateUserJournalRole)
			journalUsers.DELETE("/:user_id", h.removeUserFromJournal)
		}

		RegisterIssueRoutes(journalSpecific, cfg, services)
		registerSubmissionRoutes(journalSpecific, services)
		registerStatisticsRoutes(journalSpecific, services)
		registerSubscriptionRoutes(journalSpecific, services)
	}
}

// respondJournalError maps common service errors to HTTP responses.
func respondJournalError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
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

// createJournal godoc
// @Summary Create a new journal
// @Description Creates a new journal and assigns the creator as its manager.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal details"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Path already taken"
// @Failure 500 {object} map[string]string "Failed to create journal"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create journal", slog.String("journal_path", req.Path))

	newJournal, err := h.journalService.CreateJournal(c.Request.Context(), req.Path, req.Name, req.Description, creatorUserID)
	if err != nil {
		respondJournalError(c, logger, err, "create journal")
		return
	}

	logger.Info("Journal created successfully", slog.String("journal_id", newJournal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(newJournal))
}

// listUserJournals godoc
// @Summary List journals for current user
// @Description Retrieves the journals the authenticated user belongs to.
// @Tags journals
// @Produce  json
// @Param   includeDisabled query bool false "Include disabled journals the user manages"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list journals"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listUserJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	includeDisabled := c.Query("includeDisabled") == "true"

	journals, err := h.journalService.ListUserJournals(c.Request.Context(), userID, includeDisabled)
	if err != nil {
		respondJournalError(c, logger, err, "list journals")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJournalsResponse(journals))
}

// getJournal godoc
// @Summary Get a journal by ID
// @Description Retrieves a journal's public metadata.
// @Tags journals
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Router /journals/{journal_id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), journalID)
	if err != nil {
		respondJournalError(c, logger, err, "retrieve journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// getJournalByPath godoc
// @Summary Get a journal by path
// @Description Retrieves a journal's public metadata by its URL path slug.
// @Tags journals
// @Produce  json
// @Param   path path string true "Journal path slug"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Router /journals/path/{path} [get]
func (h *journalHandler) getJournalByPath(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	path := c.Param("path")

	journal, err := h.journalService.GetJournalByPath(c.Request.Context(), path)
	if err != nil {
		respondJournalError(c, logger, err, "retrieve journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// updateJournalSettings godoc
// @Summary Update journal settings
// @Description Updates a journal's publishing configuration. Manager only.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   settings body dto.UpdateJournalSettingsRequest true "Settings to update"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to update settings"
// @Security BearerAuth
// @Router /journals/{journal_id}/settings [put]
func (h *journalHandler) updateJournalSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var req dto.UpdateJournalSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJournalSettings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	update := domain.JournalSettingsUpdate{
		Name:                      domain.NewOptionalFromPtr(req.Name),
		Description:               domain.NewOptionalFromPtr(req.Description),
		DelayedOpenAccessDuration: domain.NewOptionalFromPtr(req.DelayedOpenAccessDuration),
		DOIPrefix:                 domain.NewOptionalFromPtr(req.DOIPrefix),
	}
	if req.PublishingMode != nil {
		update.PublishingMode = domain.NewOptional(domain.PublishingMode(*req.PublishingMode))
	}

	journal, err := h.journalService.UpdateJournalSettings(c.Request.Context(), journalID, update, userID)
	if err != nil {
		respondJournalError(c, logger, err, "update journal settings")
		return
	}

	logger.Info("Journal settings updated", slog.String("journal_id", journalID))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// disableJournal godoc
// @Summary Disable a journal
// @Description Marks a journal as disabled. Manager only.
// @Tags journals
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/disable [post]
func (h *journalHandler) disableJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.DisableJournal(c.Request.Context(), journalID, userID); err != nil {
		respondJournalError(c, logger, err, "disable journal")
		return
	}

	logger.Info("Journal disabled", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

// enableJournal godoc
// @Summary Enable a journal
// @Description Marks a journal as enabled. Manager only.
// @Tags journals
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/enable [post]
func (h *journalHandler) enableJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.EnableJournal(c.Request.Context(), journalID, userID); err != nil {
		respondJournalError(c, logger, err, "enable journal")
		return
	}

	logger.Info("Journal enabled", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

// listJournalUsers godoc
// @Summary List journal members
// @Description Retrieves the users of a journal with their roles. Members only.
// @Tags journals
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 200 {array} dto.UserJournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/users [get]
func (h *journalHandler) listJournalUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.journalService.ListJournalUsers(c.Request.Context(), journalID, userID)
	if err != nil {
		respondJournalError(c, logger, err, "list journal members")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJournalUsersResponse(members))
}

// addUserToJournal godoc
// @Summary Add a user to a journal
// @Description Adds a user to a journal with a role. Manager only.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   membership body dto.AddUserToJournalRequest true "User ID and role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal or user not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/users [post]
func (h *journalHandler) addUserToJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var req dto.AddUserToJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.AddUserToJournal(c.Request.Context(), addingUserID, req.UserID, journalID, req.Role); err != nil {
		respondJournalError(c, logger, err, "add user to journal")
		return
	}

	logger.Info("User added to journal", slog.String("journal_id", journalID), slog.String("target_user_id", req.UserID))
	c.Status(http.StatusNoContent)
}

// updateUserJournalRole godoc
// @Summary Change a member's role
// @Description Updates a user's role within a journal. Manager only.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   user_id path string true "User ID"
// @Param   role body dto.UpdateUserJournalRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal or member not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/users/{user_id} [put]
func (h *journalHandler) updateUserJournalRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateUserJournalRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateUserJournalRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.UpdateUserJournalRole(c.Request.Context(), requestingUserID, targetUserID, journalID, req.Role); err != nil {
		respondJournalError(c, logger, err, "update member role")
		return
	}

	logger.Info("Journal member role updated", slog.String("journal_id", journalID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}

// removeUserFromJournal godoc
// @Summary Remove a user from a journal
// @Description Removes a user from a journal. Manager only.
// @Tags journals
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   user_id path string true "User ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal or member not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/users/{user_id} [delete]
func (h *journalHandler) removeUserFromJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	targetUserID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.RemoveUserFromJournal(c.Request.Context(), requestingUserID, targetUserID, journalID); err != nil {
		respondJournalError(c, logger, err, "remove user from journal")
		return
	}

	logger.Info("User removed from journal", slog.String("journal_id", journalID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}
