package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
	"github.com/openjms/journal_mgmt_app/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// GoogleOAuthHandler signs users in with a Google authorization code. A
// successful exchange behaves exactly like a password login: the response
// carries the access token and the refresh token is set as an HTTP-only
// cookie.
type GoogleOAuthHandler struct {
	oauthService portssvc.GoogleOAuthHandlerSvcFacade
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	cfg          *config.Config
}

// NewGoogleOAuthHandler creates a new GoogleOAuthHandler.
func NewGoogleOAuthHandler(
	oauthService portssvc.GoogleOAuthHandlerSvcFacade,
	userService portssvc.UserSvcFacade,
	tokenService portssvc.TokenSvcFacade,
	cfg *config.Config,
) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		oauthService: oauthService,
		userService:  userService,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

// registerGoogleOAuthRoutes mounts the Google sign-in endpoints. Both run
// before the caller has a session, so the group carries no auth middleware.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewGoogleOAuthHandler(services.GoogleOAuthHandler, services.User, services.TokenService, cfg)

	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login-url", h.LoginURL)
		googleRoutes.POST("/exchange-code", h.ExchangeCode)
	}
}

// ExchangeCodeRequest is the body for POST /auth/google/exchange-code.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GoogleLoginURLResponse carries the consent URL the frontend should redirect
// to, plus the state value it must present back for CSRF checking.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// googleProfile is the normalized identity extracted from either the ID token
// or the userinfo endpoint.
type googleProfile struct {
	providerUserID string
	email          string
	name           string
	emailVerified  bool
}

// LoginURL godoc
// @Summary Get the Google consent URL
// @Description Returns the URL to send the user to for Google sign-in, together with a state value for the frontend to verify on return.
// @Tags oauth
// @Produce json
// @Success 200 {object} GoogleLoginURLResponse
// @Failure 500 {object} apperrors.AppError
// @Router /auth/google/login-url [get]
func (h *GoogleOAuthHandler) LoginURL(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.oauthService.GenerateStateString(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		appErr := apperrors.NewInternalServerError("Failed to start Google sign-in.")
		c.JSON(appErr.Code, appErr)
		return
	}

	c.JSON(http.StatusOK, GoogleLoginURLResponse{
		URL:   h.oauthService.GetGoogleLoginURL(ctx, state),
		State: state,
	})
}

// ExchangeCode godoc
// @Summary Sign in with a Google authorization code
// @Description Exchanges the authorization code for Google tokens, verifies the identity, creates the account on first sign-in, and returns an access token. A refresh token is set as an HTTP-only cookie.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} apperrors.AppError "Invalid or expired authorization code"
// @Failure 401 {object} apperrors.AppError "Identity verification failed"
// @Failure 504 {object} apperrors.AppError "Google did not respond"
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCode(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewBadRequestError("Invalid request payload: " + err.Error())
		c.JSON(appErr.Code, appErr)
		return
	}

	oauthToken, err := h.oauthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.Warn("Google code exchange failed", slog.String("error", err.Error()))
		// An invalid_grant means the code is bad or already used, which is the
		// caller's problem rather than Google's.
		if isInvalidGrant(err) {
			appErr := apperrors.NewBadRequestError("Invalid or expired authorization code.")
			c.JSON(appErr.Code, appErr)
			return
		}
		appErr := apperrors.NewGatewayTimeoutError("Could not reach Google to verify the sign-in.")
		c.JSON(appErr.Code, appErr)
		return
	}

	profile, err := h.resolveProfile(c, oauthToken)
	if err != nil {
		logger.Warn("Google identity verification failed", slog.String("error", err.Error()))
		appErr := apperrors.NewUnauthorizedError("Could not verify the Google identity.")
		c.JSON(appErr.Code, appErr)
		return
	}

	user, err := h.userService.CreateOAuthUser(
		ctx,
		profile.name,
		profile.email,
		string(domain.ProviderGoogle),
		profile.providerUserID,
		profile.emailVerified,
	)
	if err != nil {
		logger.Error("Failed to resolve OAuth user",
			slog.String("error", err.Error()),
			slog.String("provider_user_id", profile.providerUserID))
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.NewInternalServerError("Failed to sign in.")
		}
		c.JSON(appErr.Code, appErr)
		return
	}

	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		logger.Error("Failed to generate access token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		appErr := apperrors.NewInternalServerError("Failed to generate access token.")
		c.JSON(appErr.Code, appErr)
		return
	}

	// Same session semantics as a password login: rotate the stored refresh
	// token and hand the raw value out only in the cookie.
	refreshToken, refreshExpiry, err := h.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		logger.Error("Failed to generate refresh token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		appErr := apperrors.NewInternalServerError("Failed to establish the session.")
		c.JSON(appErr.Code, appErr)
		return
	}
	if err := h.userService.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		logger.Error("Failed to store refresh token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		appErr := apperrors.NewInternalServerError("Failed to establish the session.")
		c.JSON(appErr.Code, appErr)
		return
	}
	writeRefreshTokenCookie(c, h.cfg, user.UserID, refreshToken, int(h.cfg.RefreshTokenExpiryDuration.Seconds()))

	logger.Info("User signed in via Google", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: accessToken})
}

// resolveProfile extracts the caller's identity from the token exchange
// result. The ID token is preferred since it is verified locally; when the
// response carries none, the userinfo endpoint serves as fallback.
func (h *GoogleOAuthHandler) resolveProfile(c *gin.Context, token *oauth2.Token) (*googleProfile, error) {
	ctx := c.Request.Context()

	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		payload, err := h.oauthService.ValidateGoogleIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}

		profile := &googleProfile{providerUserID: payload.Subject}
		profile.email, _ = payload.Claims["email"].(string)
		profile.name, _ = payload.Claims["name"].(string)
		profile.emailVerified, _ = payload.Claims["email_verified"].(bool)
		return validateProfile(profile)
	}

	info, err := h.oauthService.GetUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return validateProfile(&googleProfile{
		providerUserID: info.ID,
		email:          info.Email,
		name:           info.Name,
		emailVerified:  info.VerifiedEmail,
	})
}

// validateProfile rejects identities missing the fields account linking
// depends on.
func validateProfile(p *googleProfile) (*googleProfile, error) {
	if p.providerUserID == "" || p.email == "" {
		return nil, errors.New("google identity is missing the subject or email claim")
	}
	return p, nil
}

// isInvalidGrant reports whether an OAuth exchange error indicates a rejected
// authorization code.
func isInvalidGrant(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "bad request")
}
