package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. Kind names the ledger
// error taxonomy entry, e.g. "InsufficientBalance".
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrSupplyExceeded),
		errors.Is(err, apperrors.ErrNonZeroBalance),
		errors.Is(err, apperrors.ErrSameAccount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err using the taxonomy mapping. Server-side
// failures are logged and their details withheld from the client.
func respondWithError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: msg, Kind: "Internal"})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: apperrors.Kind(err)})
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error(), Kind: "Validation"})
}

// callerFromContext returns the authenticated caller or writes 401.
func callerFromContext(c *gin.Context) (domain.AccountID, bool) {
	caller, ok := middleware.GetAccountFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Caller account not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return caller, true
}

// accountParam reads and validates an account name path parameter.
func accountParam(c *gin.Context, name string) (domain.AccountID, bool) {
	account := domain.AccountID(c.Param(name))
	if err := account.Validate(); err != nil {
		respondWithError(c, err, "Invalid account name")
		return "", false
	}
	return account, true
}

// codeParam reads and validates the :code path parameter.
func codeParam(c *gin.Context) (domain.SymbolCode, bool) {
	code := domain.SymbolCode(c.Param("code"))
	if err := code.Validate(); err != nil {
		respondWithError(c, err, "Invalid currency code")
		return "", false
	}
	return code, true
}

// quantityFor parses an asset string and checks it names the currency in the path.
func quantityFor(c *gin.Context, code domain.SymbolCode, raw string) (domain.Amount, bool) {
	quantity, err := domain.ParseAmount(raw)
	if err != nil {
		respondWithError(c, err, "Invalid quantity")
		return domain.Amount{}, false
	}
	if quantity.Code() != code {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidAmount, "quantity %s does not match currency %s", quantity, code), "Invalid quantity")
		return domain.Amount{}, false
	}
	return quantity, true
}

// parseAmount parses an asset string from a request body.
func parseAmount(c *gin.Context, raw string) (domain.Amount, bool) {
	amount, err := domain.ParseAmount(raw)
	if err != nil {
		respondWithError(c, err, "Invalid quantity")
		return domain.Amount{}, false
	}
	return amount, true
}
