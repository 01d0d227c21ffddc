package handlers

import (
	"net/http"

	"github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIKeyHandler handles HTTP requests for API key operations
type APIKeyHandler struct {
	keySvc services.AccountSvcFacade
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(keySvc services.AccountSvcFacade) *APIKeyHandler {
	return &APIKeyHandler{
		keySvc: keySvc,
	}
}

// RegisterAPIKeyRoutes registers the API key routes
func RegisterAPIKeyRoutes(router *gin.RouterGroup, keySvc services.AccountSvcFacade) {
	handler := NewAPIKeyHandler(keySvc)

	keysGroup := router.Group("/keys")
	{
		keysGroup.POST("", handler.CreateKey)
		keysGroup.GET("", handler.ListKeys)
		keysGroup.DELETE("/:id", handler.RevokeKey)
	}
}

// CreateKey handles the creation of a new API key
// @Summary Create a new API key
// @Description Creates a new API key for the calling account. The key will be shown only once upon creation.
// @Description The key can be sent in the `x-api-key` header or exchanged for a bearer token at /auth/token.
// @Tags keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param request body dto.CreateKeyRequest true "Key creation details"
// @Success 201 {object} dto.CreateKeyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /keys [post]
func (h *APIKeyHandler) CreateKey(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	plaintext, key, err := h.keySvc.CreateKey(c.Request.Context(), caller, req.Name, req.ExpiresIn())
	if err != nil {
		respondWithError(c, err, "Failed to create key")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateKeyResponse(plaintext, *key))
}

// ListKeys handles listing all API keys of the calling account
// @Summary List all API keys
// @Description Lists the API keys of the calling account. Only returns key metadata, not the secrets.
// @Tags keys
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Success 200 {object} dto.ListKeysResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /keys [get]
func (h *APIKeyHandler) ListKeys(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	keys, err := h.keySvc.ListKeys(c.Request.Context(), caller)
	if err != nil {
		respondWithError(c, err, "Failed to list keys")
		return
	}

	c.JSON(http.StatusOK, dto.ToListKeysResponse(keys))
}

// RevokeKey handles revoking a specific API key
// @Summary Revoke an API key
// @Description Revokes a specific API key by ID. The key will be immediately invalidated.
// @Tags keys
// @Produce json
// @Security BearerAuth
// @Security ApiKeyAuth
// @Param id path string true "Key ID (UUID format)" format(uuid)
// @Success 204 "Key revoked successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /keys/{id} [delete]
func (h *APIKeyHandler) RevokeKey(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	keyID := c.Param("id")
	if _, err := uuid.Parse(keyID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid key ID", Kind: "Validation"})
		return
	}

	if err := h.keySvc.RevokeKey(c.Request.Context(), caller, keyID); err != nil {
		respondWithError(c, err, "Failed to revoke key")
		return
	}

	c.Status(http.StatusNoContent)
}
