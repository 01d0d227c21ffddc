package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authRateLimit bounds unauthenticated registration and token requests per client IP.
const authRateLimit = "5-M"

// AuthHandler handles account registration and bearer token issuance.
type AuthHandler struct {
	accountService portssvc.AccountSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AccountSvcFacade) *AuthHandler {
	return &AuthHandler{accountService: as}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(r *gin.Engine, accountService portssvc.AccountSvcFacade) {
	h := NewAuthHandler(accountService)

	rate, _ := limiter.NewRateFromFormatted(authRateLimit)
	ipLimiter := limiter.New(memory.NewStore(), rate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := r.Group("/api/v1/auth", limitMiddleware)
	{
		auth.POST("/register", h.Register)
		auth.POST("/token", h.Token)
	}
}

// Register godoc
// @Summary Register an account
// @Description Adds an account to the directory and returns its first API key. The key is shown only once.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account name"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account := domain.AccountID(req.Account)
	plaintext, key, err := h.accountService.Register(c.Request.Context(), account)
	if err != nil {
		respondWithError(c, err, "Failed to register account")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account registered", slog.String("account", req.Account))
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Account: req.Account,
		Key:     dto.ToCreateKeyResponse(plaintext, *key),
	})
}

// Token godoc
// @Summary Exchange an API key for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "API key"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, expiresAt, err := h.accountService.IssueToken(c.Request.Context(), req.APIKey)
	if err != nil {
		if statusForError(err) == http.StatusForbidden {
			middleware.GetLoggerFromCtx(c.Request.Context()).Warn("API key rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid API key", Kind: "Unauthorized"})
			return
		}
		respondWithError(c, err, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
