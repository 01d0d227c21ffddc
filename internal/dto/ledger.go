package dto

import (
	"time"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// ListParams holds the cursor pagination query parameters shared by list endpoints.
type ListParams struct {
	Limit     int    `form:"limit,default=50" binding:"min=1,max=500"`
	PageToken string `form:"pageToken"`
}

// CreateCurrencyRequest registers a new currency. The maximum supply also
// fixes the symbol, e.g. "1000000.0000 TOK".
type CreateCurrencyRequest struct {
	Issuer        string `json:"issuer" binding:"required,accountname"`
	MaximumSupply string `json:"maximumSupply" binding:"required,asset"`
}

// IssueRequest mints new tokens to the issuer and optionally forwards them.
type IssueRequest struct {
	To       string `json:"to" binding:"required,accountname"`
	Quantity string `json:"quantity" binding:"required,asset"`
	Memo     string `json:"memo"`
}

// RetireRequest burns tokens from the issuer's balance.
type RetireRequest struct {
	Quantity string `json:"quantity" binding:"required,asset"`
	Memo     string `json:"memo"`
}

// TransferRequest moves tokens between two accounts.
type TransferRequest struct {
	From     string `json:"from" binding:"required,accountname"`
	To       string `json:"to" binding:"required,accountname"`
	Quantity string `json:"quantity" binding:"required,asset"`
	Memo     string `json:"memo"`
}

// OpenBalanceRequest creates a zero balance record, e.g. symbol "4,TOK".
type OpenBalanceRequest struct {
	Symbol   string `json:"symbol" binding:"required,symbol"`
	RAMPayer string `json:"ramPayer" binding:"required,accountname"`
}

// AdminCreateRequest designates the admin of a currency with an initial allowance.
type AdminCreateRequest struct {
	Admin     string `json:"admin" binding:"required,accountname"`
	Allowance string `json:"allowance" binding:"required,asset"`
}

// AdminUpdateRequest hands the admin role of a currency to another account.
type AdminUpdateRequest struct {
	OldAdmin  string `json:"oldAdmin" binding:"required,accountname"`
	NewAdmin  string `json:"newAdmin" binding:"required,accountname"`
	Allowance string `json:"allowance" binding:"required,asset"`
}

// AdminTransferRequest moves tokens out of the admin's allowance.
type AdminTransferRequest struct {
	From     string `json:"from" binding:"required,accountname"`
	To       string `json:"to" binding:"required,accountname"`
	Quantity string `json:"quantity" binding:"required,asset"`
	Memo     string `json:"memo"`
}

// EventResponse describes a committed ledger operation.
type EventResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Code       string    `json:"code"`
	Actor      string    `json:"actor"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Quantity   string    `json:"quantity,omitempty"`
	Memo       string    `json:"memo,omitempty"`
	Recipients []string  `json:"recipients"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CurrencyResponse defines the data returned for a registered currency.
type CurrencyResponse struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
	Supply    string `json:"supply"`
	MaxSupply string `json:"maxSupply"`
	Available string `json:"available"`
	Issuer    string `json:"issuer"`
}

// ListCurrenciesResponse is one page of registered currencies.
type ListCurrenciesResponse struct {
	Currencies []CurrencyResponse `json:"currencies"`
	NextToken  *string            `json:"nextToken,omitempty"`
}

// SupplyResponse reports the circulating supply of a currency.
type SupplyResponse struct {
	Code   string `json:"code"`
	Supply string `json:"supply"`
}

// BalanceResponse is the holding of one account in one currency.
type BalanceResponse struct {
	Owner   string `json:"owner"`
	Code    string `json:"code"`
	Balance string `json:"balance"`
}

// ListBalancesResponse is one page of an account's balances.
type ListBalancesResponse struct {
	Balances  []BalanceResponse `json:"balances"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// AdminResponse describes the admin designation of a currency.
type AdminResponse struct {
	Code      string `json:"code"`
	Admin     string `json:"admin"`
	Allowance string `json:"allowance"`
}

// ToEventResponse converts a domain.LedgerEvent to EventResponse
func ToEventResponse(event *domain.LedgerEvent) EventResponse {
	res := EventResponse{
		ID:         event.ID,
		Action:     string(event.Action),
		Code:       string(event.Code),
		Actor:      string(event.Actor),
		From:       string(event.From),
		To:         string(event.To),
		Memo:       event.Memo,
		Recipients: make([]string, len(event.Recipients)),
		OccurredAt: event.OccurredAt,
	}
	if event.Quantity != nil {
		res.Quantity = event.Quantity.String()
	}
	for i, r := range event.Recipients {
		res.Recipients[i] = string(r)
	}
	return res
}

// ToCurrencyResponse converts domain.CurrencyStats to CurrencyResponse
func ToCurrencyResponse(stats *domain.CurrencyStats) CurrencyResponse {
	sym := stats.Symbol()
	return CurrencyResponse{
		Code:      string(sym.Code),
		Precision: sym.Precision,
		Supply:    stats.Supply.String(),
		MaxSupply: stats.MaxSupply.String(),
		Available: stats.Available().String(),
		Issuer:    string(stats.Issuer),
	}
}

// ToListCurrenciesResponse converts a page of stats to ListCurrenciesResponse
func ToListCurrenciesResponse(stats []domain.CurrencyStats, nextToken string) ListCurrenciesResponse {
	res := ListCurrenciesResponse{Currencies: make([]CurrencyResponse, len(stats))}
	for i := range stats {
		res.Currencies[i] = ToCurrencyResponse(&stats[i])
	}
	if nextToken != "" {
		res.NextToken = &nextToken
	}
	return res
}

// ToSupplyResponse converts a supply amount to SupplyResponse
func ToSupplyResponse(supply *domain.Amount) SupplyResponse {
	return SupplyResponse{Code: string(supply.Code()), Supply: supply.String()}
}

// ToBalanceResponse converts an owner's balance to BalanceResponse
func ToBalanceResponse(owner domain.AccountID, balance domain.Amount) BalanceResponse {
	return BalanceResponse{
		Owner:   string(owner),
		Code:    string(balance.Code()),
		Balance: balance.String(),
	}
}

// ToListBalancesResponse converts a page of balances to ListBalancesResponse
func ToListBalancesResponse(balances []domain.AccountBalance, nextToken string) ListBalancesResponse {
	res := ListBalancesResponse{Balances: make([]BalanceResponse, len(balances))}
	for i, b := range balances {
		res.Balances[i] = ToBalanceResponse(b.Owner, b.Balance)
	}
	if nextToken != "" {
		res.NextToken = &nextToken
	}
	return res
}

// ToAdminResponse converts domain.AdminInfo to AdminResponse
func ToAdminResponse(info *domain.AdminInfo) AdminResponse {
	return AdminResponse{
		Code:      string(info.Balance.Code()),
		Admin:     string(info.Admin),
		Allowance: info.Balance.String(),
	}
}
