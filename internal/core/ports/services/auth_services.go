package services

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenSvcFacade mints and verifies the session credentials used by the API:
// short-lived JWT access tokens and rotating refresh tokens.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a JWT for the user and returns it with its expiry.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken mints a new opaque refresh token with its expiry.
	// Only a hash of it is ever persisted; the raw value goes to the client once.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken checks a presented refresh token against the
	// hash stored for the user and returns the user when it matches and has not
	// expired.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// GoogleOAuthHandlerSvcFacade wraps the pieces of the Google sign-in flow the
// HTTP layer needs: building the consent URL, exchanging the authorization
// code and resolving the signed-in identity.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString mints the anti-forgery state parameter for one
	// authorization round trip.
	GenerateStateString(ctx context.Context) (string, error)

	// GetGoogleLoginURL builds the consent-screen URL carrying the given state.
	GetGoogleLoginURL(ctx context.Context, state string) string

	// ExchangeCodeForToken redeems an authorization code for Google tokens.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)

	// GetUserInfo fetches the profile from the userinfo endpoint. Used as a
	// fallback when the token response carries no id_token.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)

	// ValidateGoogleIDToken verifies an id_token's signature and audience and
	// returns its claims.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
