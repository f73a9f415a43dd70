package middleware

import "github.com/gin-gonic/gin"

// Keys under which the auth middlewares store request identity. A custom key
// type prevents collisions with other context values.
const (
	userIDKey     = contextKey("userID")
	authMethodKey = contextKey("authMethod")
)

// Auth methods recorded under authMethodKey.
const (
	AuthMethodJWT      = "jwt"
	AuthMethodAPIToken = "api_token"
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context, falling back to the request context for values attached by
// non-gin-aware code. The boolean reports whether a user is present.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok && userID != ""
	}

	if v := c.Request.Context().Value(userIDKey); v != nil {
		userID, ok := v.(string)
		return userID, ok && userID != ""
	}

	return "", false
}

// markAuthenticated records the resolved user and the mechanism that
// authenticated the request.
func markAuthenticated(c *gin.Context, userID, method string) {
	c.Set(string(userIDKey), userID)
	c.Set(string(authMethodKey), method)
}

// authMethod returns the mechanism that authenticated the request, or false
// when no middleware has resolved one yet.
func authMethod(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(authMethodKey))
	if !exists {
		return "", false
	}
	method, ok := v.(string)
	return method, ok
}
