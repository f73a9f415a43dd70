package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// Requests without a valid bearer token are rejected with 401.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		// Skip when an earlier middleware already authenticated the request,
		// e.g. via API token.
		if _, done := authMethod(c); done {
			c.Next()
			return
		}

		userID, errMsg := parseBearerToken(c, jwtSecret)
		if errMsg != "" {
			logger.Warn("Token validation failed", slog.String("reason", errMsg))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		attachUserToContext(c, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the bearer token when one is present but
// lets anonymous requests through. Handlers for content that is public once
// published use this and leave the access decision to the services.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, done := authMethod(c); done {
			c.Next()
			return
		}

		if c.GetHeader("Authorization") == "" {
			c.Next() // anonymous
			return
		}

		userID, errMsg := parseBearerToken(c, jwtSecret)
		if errMsg != "" {
			// A token was presented but is invalid; reject rather than
			// silently downgrading the request to anonymous.
			GetLoggerFromCtx(c.Request.Context()).Warn("Token validation failed", slog.String("reason", errMsg))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		attachUserToContext(c, userID)
		c.Next()
	}
}

// parseBearerToken extracts and validates the JWT from the Authorization
// header. It returns the token subject, or a client-safe error message.
func parseBearerToken(c *gin.Context, jwtSecret string) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", "Authorization header format must be Bearer {token}"
	}

	token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "Token has expired"
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			msg = "Token not valid yet"
		}
		return "", msg
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", "Invalid token"
	}
	if claims.Subject == "" {
		return "", "Invalid token claims"
	}
	return claims.Subject, ""
}

// attachUserToContext records the JWT-authenticated user in both the gin and
// request contexts, together with a logger enriched with that ID.
func attachUserToContext(c *gin.Context, userID string) {
	logger := GetLoggerFromCtx(c.Request.Context())

	markAuthenticated(c, userID, AuthMethodJWT)

	ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)
	enrichedLogger := logger.With(slog.String("user_id", userID))
	c.Request = c.Request.WithContext(context.WithValue(ctxWithUser, loggerCtxKey, enrichedLogger))
}
