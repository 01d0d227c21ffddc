package handlers

import (
	"net/http"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves transfers and the per-currency admin role.
type LedgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterLedgerRoutes registers transfer and admin routes on rg.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := NewLedgerHandler(ledgerService)

	rg.POST("/transfers", h.Transfer)
	rg.POST("/admin-transfers", h.TransferAdmin)

	admin := rg.Group("/currencies/:code/admin")
	{
		admin.POST("", h.CreateAdmin)
		admin.PUT("", h.UpdateAdmin)
		admin.GET("", h.GetAdmin)
	}
}

// Transfer godoc
// @Summary Transfer tokens
// @Description Moves tokens between two accounts. The caller must be the sender.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid quantity or memo"
// @Failure 403 {object} ErrorResponse "Caller is not the sender"
// @Failure 404 {object} ErrorResponse "Unknown currency or recipient"
// @Failure 422 {object} ErrorResponse "Overdrawn balance or same account"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /transfers [post]
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	quantity, ok := parseAmount(c, req.Quantity)
	if !ok {
		return
	}

	event, err := h.ledgerService.Transfer(c.Request.Context(), caller, domain.AccountID(req.From), domain.AccountID(req.To), quantity, req.Memo)
	if err != nil {
		respondWithError(c, err, "Failed to transfer tokens")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// TransferAdmin godoc
// @Summary Transfer tokens from the admin allowance
// @Description Moves tokens from the admin's balance, spending the same amount of allowance. The caller must be the admin.
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   transfer body dto.AdminTransferRequest true "Transfer details"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid quantity or memo"
// @Failure 403 {object} ErrorResponse "Caller is not the admin"
// @Failure 422 {object} ErrorResponse "Allowance or balance exceeded"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin-transfers [post]
func (h *LedgerHandler) TransferAdmin(c *gin.Context) {
	var req dto.AdminTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	quantity, ok := parseAmount(c, req.Quantity)
	if !ok {
		return
	}

	event, err := h.ledgerService.TransferAdmin(c.Request.Context(), caller, domain.AccountID(req.From), domain.AccountID(req.To), quantity, req.Memo)
	if err != nil {
		respondWithError(c, err, "Failed to transfer from admin allowance")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// CreateAdmin godoc
// @Summary Designate the admin of a currency
// @Description Designates an admin with an initial allowance. The caller must be the issuer.
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency code"
// @Param   admin body dto.AdminCreateRequest true "Admin details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid allowance"
// @Failure 403 {object} ErrorResponse "Caller is not the issuer"
// @Failure 409 {object} ErrorResponse "Admin already designated"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/admin [post]
func (h *LedgerHandler) CreateAdmin(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	var req dto.AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	allowance, ok := quantityFor(c, code, req.Allowance)
	if !ok {
		return
	}

	event, err := h.ledgerService.AdminCreate(c.Request.Context(), caller, domain.AccountID(req.Admin), allowance)
	if err != nil {
		respondWithError(c, err, "Failed to designate admin")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// UpdateAdmin godoc
// @Summary Hand over the admin role
// @Description Replaces the admin and its allowance. The caller must be the current admin.
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency code"
// @Param   admin body dto.AdminUpdateRequest true "Handover details"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid allowance"
// @Failure 403 {object} ErrorResponse "Caller is not the admin"
// @Failure 422 {object} ErrorResponse "Same account"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/admin [put]
func (h *LedgerHandler) UpdateAdmin(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	var req dto.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	allowance, ok := quantityFor(c, code, req.Allowance)
	if !ok {
		return
	}

	event, err := h.ledgerService.AdminUpdate(c.Request.Context(), caller, domain.AccountID(req.OldAdmin), domain.AccountID(req.NewAdmin), allowance)
	if err != nil {
		respondWithError(c, err, "Failed to update admin")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// GetAdmin godoc
// @Summary Get the admin of a currency
// @Tags admin
// @Produce  json
// @Param   code path string true "Currency code"
// @Success 200 {object} dto.AdminResponse
// @Failure 404 {object} ErrorResponse "No admin designated"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/admin [get]
func (h *LedgerHandler) GetAdmin(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	info, err := h.ledgerService.GetAdmin(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve admin")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdminResponse(info))
}
