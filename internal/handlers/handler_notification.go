package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// notificationHandler handles HTTP requests for a user's notifications.
type notificationHandler struct {
	notificationService portssvc.NotificationSvcFacade
}

// newNotificationHandler creates a new notificationHandler.
func newNotificationHandler(ns portssvc.NotificationSvcFacade) *notificationHandler {
	return &notificationHandler{
		notificationService: ns,
	}
}

// registerNotificationRoutes registers the notification routes.
func registerNotificationRoutes(rg *gin.RouterGroup, notificationService portssvc.NotificationSvcFacade) {
	h := newNotificationHandler(notificationService)

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.listNotifications)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.POST("/:notification_id/read", h.markRead)
	}
}

// listNotifications godoc
// @Summary List notifications
// @Description Retrieves a page of the authenticated user's notifications, newest first.
// @Tags notifications
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list notifications"
// @Security BearerAuth
// @Router /notifications [get]
func (h *notificationHandler) listNotifications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListNotificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListNotifications", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.notificationService.ListUserNotifications(c.Request.Context(), userID, params)
	if err != nil {
		logger.Error("Failed to list notifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// unreadCount godoc
// @Summary Count unread notifications
// @Description Returns the number of unread notifications for the authenticated user.
// @Tags notifications
// @Produce  json
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to count notifications"
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *notificationHandler) unreadCount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to count unread notifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// markRead godoc
// @Summary Mark a notification read
// @Description Stamps a notification as read. Only the owner can mark it.
// @Tags notifications
// @Produce  json
// @Param   notification_id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Notification not found"
// @Failure 500 {object} map[string]string "Failed to mark notification"
// @Security BearerAuth
// @Router /notifications/{notification_id}/read [post]
func (h *notificationHandler) markRead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	notificationID := c.Param("notification_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.notificationService.MarkNotificationRead(c.Request.Context(), notificationID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		logger.Error("Failed to mark notification read", slog.String("error", err.Error()), slog.String("notification_id", notificationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification"})
		return
	}

	c.Status(http.StatusNoContent)
}
