package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UsageTracker records one usage event per API call.
type UsageTracker interface {
	IsInitialized() bool
	Track(distinctID, event string, properties map[string]any)
}

// pathsToSkip contains paths that should not be tracked
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks successful
// authenticated API calls under the caller's account.
func PosthogMiddleware(tracker UsageTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip if tracking is disabled or path is in skip list
		if tracker == nil || !tracker.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Process request first
		c.Next()

		// Skip if there was an error processing the request
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		account, exists := GetAccountFromContext(c)
		if !exists {
			return
		}

		// Create event name from route path (e.g., "/api/v1/transfers" -> "api_v1_transfers")
		eventName := strings.TrimPrefix(c.FullPath(), "/")
		eventName = strings.ReplaceAll(eventName, "/", "_")
		eventName = strings.ReplaceAll(eventName, ":", "")

		// Skip if event name is empty (e.g., for 404s)
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}

		if len(c.Params) > 0 {
			params := make(map[string]string)
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		tracker.Track(string(account), eventName, props)
	}
}
