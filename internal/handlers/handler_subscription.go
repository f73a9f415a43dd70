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

// subscriptionHandler handles HTTP requests for subscription offerings and
// reader subscriptions.
type subscriptionHandler struct {
	subscriptionService portssvc.SubscriptionSvcFacade
}

// newSubscriptionHandler creates a new subscriptionHandler.
func newSubscriptionHandler(ss portssvc.SubscriptionSvcFacade) *subscriptionHandler {
	return &subscriptionHandler{
		subscriptionService: ss,
	}
}

// registerSubscriptionRoutes registers subscription routes under a specific
// journal.
func registerSubscriptionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newSubscriptionHandler(services.Subscription)

	types := rg.Group("/subscription-types")
	{
		types.GET("", h.listSubscriptionTypes)
		types.POST("", h.createSubscriptionType)
		types.DELETE("/:subscription_type_id", h.deleteSubscriptionType)
		types.POST("/:subscription_type_id/subscribe", h.subscribe)
	}
}

// listSubscriptionTypes godoc
// @Summary List subscription offerings
// @Description Retrieves the journal's subscription offerings.
// @Tags subscriptions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Success 200 {array} dto.SubscriptionTypeResponse
// @Failure 500 {object} map[string]string "Failed to list subscription types"
// @Router /journals/{journal_id}/subscription-types [get]
func (h *subscriptionHandler) listSubscriptionTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	types, err := h.subscriptionService.ListSubscriptionTypes(c.Request.Context(), journalID)
	if err != nil {
		logger.Error("Failed to list subscription types", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subscription types"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionTypeResponses(types))
}

// createSubscriptionType godoc
// @Summary Create a subscription offering
// @Description Adds a subscription offering to the journal. Manager only.
// @Tags subscriptions
// @Accept  json
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   subscriptionType body dto.CreateSubscriptionTypeRequest true "Offering details"
// @Success 201 {object} dto.SubscriptionTypeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /journals/{journal_id}/subscription-types [post]
func (h *subscriptionHandler) createSubscriptionType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	var req dto.CreateSubscriptionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubscriptionType", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	st, err := h.subscriptionService.CreateSubscriptionType(c.Request.Context(), journalID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create subscription type", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription type"})
		}
		return
	}

	logger.Info("Subscription type created", slog.String("subscription_type_id", st.SubscriptionTypeID), slog.String("journal_id", journalID))
	c.JSON(http.StatusCreated, dto.ToSubscriptionTypeResponse(st))
}

// deleteSubscriptionType godoc
// @Summary Delete a subscription offering
// @Description Removes a subscription offering from the journal. Manager only.
// @Tags subscriptions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   subscription_type_id path string true "Subscription type ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Subscription type not found"
// @Security BearerAuth
// @Router /journals/{journal_id}/subscription-types/{subscription_type_id} [delete]
func (h *subscriptionHandler) deleteSubscriptionType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	subscriptionTypeID := c.Param("subscription_type_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.subscriptionService.DeleteSubscriptionType(c.Request.Context(), journalID, subscriptionTypeID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription type not found"})
		default:
			logger.Error("Failed to delete subscription type", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription type"})
		}
		return
	}

	logger.Info("Subscription type deleted", slog.String("subscription_type_id", subscriptionTypeID))
	c.Status(http.StatusNoContent)
}

// subscribe godoc
// @Summary Subscribe to a journal
// @Description Creates a subscription for the authenticated user against an offering.
// @Tags subscriptions
// @Produce  json
// @Param   journal_id path string true "Journal ID"
// @Param   subscription_type_id path string true "Subscription type ID"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Subscription type not found"
// @Failure 409 {object} map[string]string "Already subscribed"
// @Security BearerAuth
// @Router /journals/{journal_id}/subscription-types/{subscription_type_id}/subscribe [post]
func (h *subscriptionHandler) subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	subscriptionTypeID := c.Param("subscription_type_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	subscription, err := h.subscriptionService.Subscribe(c.Request.Context(), journalID, subscriptionTypeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription type not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to subscribe", slog.String("error", err.Error()), slog.String("subscription_type_id", subscriptionTypeID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		}
		return
	}

	logger.Info("Subscription created", slog.String("subscription_id", subscription.SubscriptionID), slog.String("journal_id", journalID))
	c.JSON(http.StatusCreated, dto.ToSubscriptionResponse(subscription))
}
