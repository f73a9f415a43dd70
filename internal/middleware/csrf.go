package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openjms/journal_mgmt_app/internal/platform/config"
	"github.com/openjms/journal_mgmt_app/internal/utils"
)

// CSRFProtection implements double-submit cookie protection for
// state-changing requests. Safe methods receive a CSRF cookie; mutating
// methods must echo the cookie value in the configured header. A mismatch
// aborts with 403 before the handler runs, so no state is touched.
func CSRFProtection(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			ensureCSRFCookie(c, cfg)
			c.Next()
			return
		}

		cookie, err := c.Cookie(cfg.CSRFCookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing"})
			return
		}

		header := c.GetHeader(cfg.CSRFHeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token mismatch"})
			return
		}

		c.Next()
	}
}

// ensureCSRFCookie sets the CSRF cookie when the request does not carry one.
// The cookie is intentionally readable by scripts so clients can echo it back
// in the header.
func ensureCSRFCookie(c *gin.Context, cfg *config.Config) {
	if cookie, err := c.Cookie(cfg.CSRFCookieName); err == nil && cookie != "" {
		return
	}

	token, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		// Without a token the next mutating request will fail closed.
		GetLoggerFromCtx(c.Request.Context()).Error("Failed to generate CSRF token", slog.String("error", err.Error()))
		return
	}

	c.SetCookie(cfg.CSRFCookieName, token, 0, "/", "", cfg.IsProduction, false)
}
