package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/dto"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(ls portssvc.LedgerSvcFacade) *currencyHandler {
	return &currencyHandler{
		ledgerService: ls,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newCurrencyHandler(ledgerService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrency)
		currencies.GET("/:code/supply", h.getSupply)
		currencies.POST("/:code/issue", h.issue)
		currencies.POST("/:code/retire", h.retire)
	}
}

// createCurrency godoc
// @Summary Create a new currency
// @Description Registers a currency with its issuer and maximum supply. The caller must be the issuer.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   currency body dto.CreateCurrencyRequest true "Currency details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Caller is not the issuer"
// @Failure 409 {object} ErrorResponse "Currency already exists"
// @Failure 500 {object} ErrorResponse "Failed to create currency"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies [post]
func (h *currencyHandler) createCurrency(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	maxSupply, ok := parseAmount(c, req.MaximumSupply)
	if !ok {
		return
	}

	event, err := h.ledgerService.Create(c.Request.Context(), caller, domain.AccountID(req.Issuer), maxSupply)
	if err != nil {
		respondWithError(c, err, "Failed to create currency")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listCurrencies godoc
// @Summary List currencies
// @Description Pages through registered currencies ordered by code
// @Tags currencies
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   pageToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListCurrenciesResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 500 {object} ErrorResponse "Failed to list currencies"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	stats, next, err := h.ledgerService.ListCurrencies(c.Request.Context(), params.PageToken, params.Limit)
	if err != nil {
		respondWithError(c, err, "Failed to list currencies")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCurrenciesResponse(stats, next))
}

// getCurrency godoc
// @Summary Get a currency by code
// @Description Retrieves supply, maximum supply and issuer of a currency
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency code" MinLength(1) MaxLength(7)
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} ErrorResponse "Invalid code"
// @Failure 404 {object} ErrorResponse "Currency not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrency(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	stats, err := h.ledgerService.GetStats(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(stats))
}

// getSupply godoc
// @Summary Get the supply of a currency
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency code"
// @Success 200 {object} dto.SupplyResponse
// @Failure 404 {object} ErrorResponse "Currency not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/supply [get]
func (h *currencyHandler) getSupply(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	supply, err := h.ledgerService.GetSupply(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve supply")
		return
	}
	c.JSON(http.StatusOK, dto.ToSupplyResponse(supply))
}

// issue godoc
// @Summary Issue tokens
// @Description Mints tokens to the issuer and forwards them to the recipient. The caller must be the issuer.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency code"
// @Param   request body dto.IssueRequest true "Issue details"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid quantity"
// @Failure 403 {object} ErrorResponse "Caller is not the issuer"
// @Failure 404 {object} ErrorResponse "Currency not found"
// @Failure 422 {object} ErrorResponse "Supply exceeded"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/issue [post]
func (h *currencyHandler) issue(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	var req dto.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	quantity, ok := quantityFor(c, code, req.Quantity)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to issue tokens", slog.String("code", string(code)), slog.String("to", req.To))

	event, err := h.ledgerService.Issue(c.Request.Context(), caller, domain.AccountID(req.To), quantity, req.Memo)
	if err != nil {
		respondWithError(c, err, "Failed to issue tokens")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// retire godoc
// @Summary Retire tokens
// @Description Burns tokens from the issuer's balance. The caller must be the issuer.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency code"
// @Param   request body dto.RetireRequest true "Retire details"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid quantity"
// @Failure 403 {object} ErrorResponse "Caller is not the issuer"
// @Failure 422 {object} ErrorResponse "Overdrawn balance"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /currencies/{code}/retire [post]
func (h *currencyHandler) retire(c *gin.Context) {
	code, ok := codeParam(c)
	if !ok {
		return
	}
	var req dto.RetireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	quantity, ok := quantityFor(c, code, req.Quantity)
	if !ok {
		return
	}

	event, err := h.ledgerService.Retire(c.Request.Context(), caller, quantity, req.Memo)
	if err != nil {
		respondWithError(c, err, "Failed to retire tokens")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}
