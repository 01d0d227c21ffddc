package middleware

import (
	"context"
	"log/slog"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is used for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

// accountKey is the key used to store the authenticated caller's account.
const accountKey = contextKey("account")

// loggerCtxKey is the key used to store the request-scoped logger in the standard context.
const loggerCtxKey = contextKey("loggerCtx")

// authMethodKey records which middleware authenticated the request.
const authMethodKey = "authMethod"

// GetAccountFromContext retrieves the authenticated caller from the Gin context.
// It returns the account and a boolean indicating if it was found.
func GetAccountFromContext(c *gin.Context) (domain.AccountID, bool) {
	val, exists := c.Get(string(accountKey))
	if !exists {
		// check in the request context as well
		if account, ok := c.Request.Context().Value(accountKey).(domain.AccountID); ok {
			return account, true
		}
		return "", false
	}

	account, ok := val.(domain.AccountID)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return account, true
}

// setAccount stores the caller in both the Gin context and the request context,
// and enriches the request logger with it.
func setAccount(c *gin.Context, account domain.AccountID, method string) {
	logger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("account", string(account)))
	ctx := context.WithValue(c.Request.Context(), accountKey, account)
	ctx = WithLogger(ctx, logger)
	c.Request = c.Request.WithContext(ctx)

	c.Set(string(accountKey), account)
	c.Set(string(loggerKey), logger)
	c.Set(authMethodKey, method)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// LoggerFromCtx returns the request-scoped logger if one was stored.
func LoggerFromCtx(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger)
	return logger, ok && logger != nil
}

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context,
// falling back to the default logger.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := LoggerFromCtx(ctx); ok {
		return logger
	}
	return slog.Default()
}
