package services

import (
	"context"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// LedgerReaderSvc defines the read-only queries. None of them require authorization.
type LedgerReaderSvc interface {
	// GetSupply returns the current supply of code; apperrors.ErrNotFound if unregistered.
	GetSupply(ctx context.Context, code domain.SymbolCode) (*domain.Amount, error)

	// GetBalance returns the balance of owner in code; apperrors.ErrNotFound if no record exists.
	GetBalance(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (*domain.Amount, error)

	// GetStats returns the registry record of code.
	GetStats(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, error)

	// ListCurrencies pages through registered currencies ordered by code.
	ListCurrencies(ctx context.Context, pageToken string, limit int) ([]domain.CurrencyStats, string, error)

	// ListBalances pages through the balances held by owner ordered by code.
	ListBalances(ctx context.Context, owner domain.AccountID, pageToken string, limit int) ([]domain.AccountBalance, string, error)

	// GetAdmin returns the admin designation of code.
	GetAdmin(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, error)
}

// LedgerWriterSvc defines the mutating operations. caller is the account
// that authorized the call; every operation checks it before mutating.
// Each returns the event describing the committed operation.
type LedgerWriterSvc interface {
	Create(ctx context.Context, caller, issuer domain.AccountID, maxSupply domain.Amount) (*domain.LedgerEvent, error)
	Issue(ctx context.Context, caller, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error)
	Retire(ctx context.Context, caller domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error)
	Transfer(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error)
	Open(ctx context.Context, caller, owner domain.AccountID, symbol domain.Symbol, ramPayer domain.AccountID) (*domain.LedgerEvent, error)
	Close(ctx context.Context, caller, owner domain.AccountID, code domain.SymbolCode) (*domain.LedgerEvent, error)
}

// LedgerAdminSvc manages the per-currency admin designation.
type LedgerAdminSvc interface {
	AdminCreate(ctx context.Context, caller, adminUser domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error)
	AdminUpdate(ctx context.Context, caller, oldAdmin, newAdmin domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error)
	TransferAdmin(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerAdminSvc
}

// EventSink receives events of committed operations.
type EventSink interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}
