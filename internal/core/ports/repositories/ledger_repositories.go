package repositories

import (
	"context"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// CurrencyReader defines read operations on the currency registry.
type CurrencyReader interface {
	// FindStats returns apperrors.ErrNotFound for unregistered codes.
	FindStats(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, error)

	// ListStats returns up to limit currencies with code > after, ordered by code.
	ListStats(ctx context.Context, after domain.SymbolCode, limit int) ([]domain.CurrencyStats, error)
}

// CurrencyWriter defines write operations on the currency registry.
type CurrencyWriter interface {
	// Register inserts new stats; apperrors.ErrDuplicate if the code exists.
	Register(ctx context.Context, stats domain.CurrencyStats, payer domain.AccountID) error

	// AddSupply raises supply, failing with apperrors.ErrSupplyExceeded past max supply.
	AddSupply(ctx context.Context, quantity domain.Amount) (*domain.CurrencyStats, error)

	// SubSupply lowers supply, failing with apperrors.ErrInsufficientBalance below zero.
	SubSupply(ctx context.Context, quantity domain.Amount) (*domain.CurrencyStats, error)
}

// CurrencyRegistry combines all currency registry operations.
type CurrencyRegistry interface {
	CurrencyReader
	CurrencyWriter
}

// BalanceReader defines read operations on the balance ledger.
type BalanceReader interface {
	// FindBalance returns apperrors.ErrNotFound if owner holds no record for code.
	FindBalance(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (*domain.AccountBalance, error)

	// ListBalances returns up to limit balances of owner with code > after.
	ListBalances(ctx context.Context, owner domain.AccountID, after domain.SymbolCode, limit int) ([]domain.AccountBalance, error)
}

// BalanceWriter defines write operations on the balance ledger.
type BalanceWriter interface {
	// Credit adds quantity to owner, creating the record with payer if absent.
	Credit(ctx context.Context, owner domain.AccountID, quantity domain.Amount, payer domain.AccountID) (*domain.AccountBalance, error)

	// Debit subtracts quantity from owner, failing with apperrors.ErrInsufficientBalance.
	Debit(ctx context.Context, owner domain.AccountID, quantity domain.Amount) (*domain.AccountBalance, error)

	// Open creates a zero balance for owner if none exists and reports whether it did.
	Open(ctx context.Context, owner domain.AccountID, symbol domain.Symbol, payer domain.AccountID) (bool, error)

	// Close deletes a zero balance and reports whether a record was removed.
	Close(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (bool, error)
}

// BalanceLedger combines all balance ledger operations.
type BalanceLedger interface {
	BalanceReader
	BalanceWriter
}

// AdminReader defines read operations on the admin registry.
type AdminReader interface {
	// FindAdmin returns apperrors.ErrNotFound if no admin is designated for code.
	FindAdmin(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, error)
}

// AdminWriter defines write operations on the admin registry.
type AdminWriter interface {
	// Designate inserts the first admin record; apperrors.ErrDuplicate if one exists.
	Designate(ctx context.Context, info domain.AdminInfo, payer domain.AccountID) error

	// Rotate replaces admin and allowance in one write if current admin is oldAdmin.
	Rotate(ctx context.Context, oldAdmin domain.AccountID, next domain.AdminInfo) error

	// Spend draws quantity from the admin allowance.
	Spend(ctx context.Context, quantity domain.Amount) (*domain.AdminInfo, error)
}

// AdminRegistry combines all admin registry operations.
type AdminRegistry interface {
	AdminReader
	AdminWriter
}

// LedgerStores are the registries one ledger operation works on, all bound
// to the same record store handle.
type LedgerStores struct {
	Currencies CurrencyRegistry
	Balances   BalanceLedger
	Admins     AdminRegistry
	Directory  DirectoryReader
}
