package middleware

import (
	"github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries an account API key as an alternative to a bearer token.
const APIKeyHeader = "x-api-key"

// APITokenAuth is a middleware that authenticates requests using account API keys.
// Requests without a valid key fall through to AuthMiddleware.
func APITokenAuth(keySvc services.AccountKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip authentication for public routes
		if isPublicRoute(c.Request.URL.Path) {
			c.Next()
			return
		}

		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.Next() // No api key provided, let it continue
			return
		}

		account, err := keySvc.ValidateKey(c.Request.Context(), apiKey)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("API key rejected", "error", err)
			c.Next() // Key validation failed, let it continue
			return
		}

		// Key is valid, set the caller in context and skip JWT auth
		setAccount(c, account, "api_key")
		c.Next()
	}
}

// isPublicRoute checks if the given path is a public route that doesn't require authentication
func isPublicRoute(path string) bool {
	publicRoutes := []string{
		"/api/v1/auth/register",
		"/api/v1/auth/token",
		"/health",
	}

	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}

	return false
}
