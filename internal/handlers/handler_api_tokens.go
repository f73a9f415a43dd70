package handlers

import (
	"errors"
	"net/http"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APITokenHandler manages the caller's programmatic access tokens. Tokens
// authenticate requests through the x-api-key header as an alternative to the
// browser session, e.g. for OAI harvesters or publishing automation.
type APITokenHandler struct {
	tokenSvc services.APITokenSvc
}

// NewAPITokenHandler creates a new APITokenHandler.
func NewAPITokenHandler(tokenSvc services.APITokenSvc) *APITokenHandler {
	return &APITokenHandler{tokenSvc: tokenSvc}
}

// RegisterAPITokenRoutes mounts the token management endpoints. The group is
// expected to already require an authenticated user.
func RegisterAPITokenRoutes(router *gin.RouterGroup, tokenSvc services.APITokenSvc) {
	handler := NewAPITokenHandler(tokenSvc)

	tokensGroup := router.Group("/tokens")
	{
		tokensGroup.POST("", handler.CreateToken)
		tokensGroup.GET("", handler.ListTokens)
		tokensGroup.DELETE("/:id", handler.RevokeToken)
		tokensGroup.DELETE("", handler.RevokeAllTokens)
	}
}

// CreateToken godoc
// @Summary Create an API token
// @Description Mints a new API token for the authenticated user. The secret is returned once in this response and cannot be retrieved again. Present it in the x-api-key header to authenticate.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAPITokenRequest true "Token name and optional lifetime"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create token"
// @Router /tokens [post]
func (h *APITokenHandler) CreateToken(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	secret, token, err := h.tokenSvc.CreateToken(c.Request.Context(), userID, req.Name, req.ExpiryDuration())
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateAPITokenResponse(secret, token))
}

// ListTokens godoc
// @Summary List API tokens
// @Description Lists the authenticated user's tokens, newest first. Only metadata is returned, never the secrets.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.APITokenResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tokens"
// @Router /tokens [get]
func (h *APITokenHandler) ListTokens(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokens, err := h.tokenSvc.ListTokens(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAPITokenResponseList(tokens))
}

// RevokeToken godoc
// @Summary Revoke an API token
// @Description Revokes one of the authenticated user's tokens. Requests carrying the token stop authenticating immediately.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param id path string true "Token ID (UUID format)" format(uuid)
// @Success 204 "Token revoked"
// @Failure 400 {object} map[string]string "Invalid token ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Token not found"
// @Failure 500 {object} map[string]string "Failed to revoke token"
// @Router /tokens/{id} [delete]
func (h *APITokenHandler) RevokeToken(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokenID := c.Param("id")
	if _, err := uuid.Parse(tokenID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token ID"})
		return
	}

	if err := h.tokenSvc.RevokeToken(c.Request.Context(), userID, tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeAllTokens godoc
// @Summary Revoke all API tokens
// @Description Revokes every token of the authenticated user. Programmatic access requires minting a new token afterwards.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 204 "All tokens revoked"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to revoke tokens"
// @Router /tokens [delete]
func (h *APITokenHandler) RevokeAllTokens(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tokenSvc.RevokeAllTokens(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke tokens"})
		return
	}

	c.Status(http.StatusNoContent)
}
