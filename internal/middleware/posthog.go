package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openjms/journal_mgmt_app/internal/utils"
)

// untrackedPaths are probe endpoints that would drown real usage signal.
var untrackedPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// PosthogMiddleware reports successful authenticated API calls as analytics
// events. The journal and issue route parameters are promoted to event
// properties so funnels can segment per journal.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		// Only successful calls count as usage.
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// Anonymous reads carry no stable identity to attribute the event to.
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if journalID := c.Param("journal_id"); journalID != "" {
			props["journal_id"] = journalID
		}
		if issueID := c.Param("issue_id"); issueID != "" {
			props["issue_id"] = issueID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// routeEventName turns a route pattern into a stable event name, dropping
// parameter segments: "/api/v1/journals/:journal_id/issues" becomes
// "api_v1_journals_issues". Unmatched routes yield "".
func routeEventName(route string) string {
	var parts []string
	for _, seg := range strings.Split(strings.TrimPrefix(route, "/"), "/") {
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, "_")
}
