package handlers

import (
	"net/http"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// accountHandler handles account lookups and balance records.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

// RegisterAccountRoutes registers routes for accounts and their balances.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := &accountHandler{
		accountService: accountService,
		ledgerService:  ledgerService,
	}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/me", h.getMe)
		accounts.GET("/:owner", h.getAccount)
		accounts.GET("/:owner/balances", h.listBalances)
		accounts.POST("/:owner/balances", h.openBalance)
		accounts.GET("/:owner/balances/:code", h.getBalance)
		accounts.DELETE("/:owner/balances/:code", h.closeBalance)
	}
}

// getMe godoc
// @Summary Get the calling account
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/me [get]
func (h *accountHandler) getMe(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	h.respondWithAccount(c, caller)
}

// getAccount godoc
// @Summary Get a registered account
// @Tags accounts
// @Produce  json
// @Param   owner path string true "Account name"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/{owner} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	owner, ok := accountParam(c, "owner")
	if !ok {
		return
	}
	h.respondWithAccount(c, owner)
}

func (h *accountHandler) respondWithAccount(c *gin.Context, account domain.AccountID) {
	entry, err := h.accountService.GetAccount(c.Request.Context(), account)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(entry))
}

// listBalances godoc
// @Summary List balances of an account
// @Description Pages through the balances held by an account ordered by currency code
// @Tags balances
// @Produce  json
// @Param   owner path string true "Account name"
// @Param   limit query int false "Page size" default(50)
// @Param   pageToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListBalancesResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/{owner}/balances [get]
func (h *accountHandler) listBalances(c *gin.Context) {
	owner, ok := accountParam(c, "owner")
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	balances, next, err := h.ledgerService.ListBalances(c.Request.Context(), owner, params.PageToken, params.Limit)
	if err != nil {
		respondWithError(c, err, "Failed to list balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBalancesResponse(balances, next))
}

// getBalance godoc
// @Summary Get one balance of an account
// @Tags balances
// @Produce  json
// @Param   owner path string true "Account name"
// @Param   code path string true "Currency code"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} ErrorResponse "No balance record"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/{owner}/balances/{code} [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	owner, ok := accountParam(c, "owner")
	if !ok {
		return
	}
	code, ok := codeParam(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), owner, code)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(owner, *balance))
}

// openBalance godoc
// @Summary Open a zero balance
// @Description Creates an empty balance record for the owner. The caller must be the RAM payer.
// @Tags balances
// @Accept  json
// @Produce  json
// @Param   owner path string true "Account name"
// @Param   request body dto.OpenBalanceRequest true "Symbol and payer"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Symbol precision mismatch"
// @Failure 403 {object} ErrorResponse "Caller is not the payer"
// @Failure 404 {object} ErrorResponse "Unknown currency or owner"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/{owner}/balances [post]
func (h *accountHandler) openBalance(c *gin.Context) {
	owner, ok := accountParam(c, "owner")
	if !ok {
		return
	}
	var req dto.OpenBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	symbol, err := domain.ParseSymbol(req.Symbol)
	if err != nil {
		respondWithError(c, err, "Invalid symbol")
		return
	}

	event, err := h.ledgerService.Open(c.Request.Context(), caller, owner, symbol, domain.AccountID(req.RAMPayer))
	if err != nil {
		respondWithError(c, err, "Failed to open balance")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// closeBalance godoc
// @Summary Close a zero balance
// @Description Deletes the owner's balance record. The caller must be the owner and the balance must be zero.
// @Tags balances
// @Produce  json
// @Param   owner path string true "Account name"
// @Param   code path string true "Currency code"
// @Success 200 {object} dto.EventResponse
// @Failure 403 {object} ErrorResponse "Caller is not the owner"
// @Failure 422 {object} ErrorResponse "Balance is not zero"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /accounts/{owner}/balances/{code} [delete]
func (h *accountHandler) closeBalance(c *gin.Context) {
	owner, ok := accountParam(c, "owner")
	if !ok {
		return
	}
	code, ok := codeParam(c)
	if !ok {
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	event, err := h.ledgerService.Close(c.Request.Context(), caller, owner, code)
	if err != nil {
		respondWithError(c, err, "Failed to close balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}
