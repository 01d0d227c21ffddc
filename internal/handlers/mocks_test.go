package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) event(args mock.Arguments) (*domain.LedgerEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEvent), args.Error(1)
}

func (m *MockLedgerService) GetSupply(ctx context.Context, code domain.SymbolCode) (*domain.Amount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Amount), args.Error(1)
}
func (m *MockLedgerService) GetBalance(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (*domain.Amount, error) {
	args := m.Called(ctx, owner, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Amount), args.Error(1)
}
func (m *MockLedgerService) GetStats(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyStats), args.Error(1)
}
func (m *MockLedgerService) ListCurrencies(ctx context.Context, pageToken string, limit int) ([]domain.CurrencyStats, string, error) {
	args := m.Called(ctx, pageToken, limit)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.CurrencyStats), args.String(1), args.Error(2)
}
func (m *MockLedgerService) ListBalances(ctx context.Context, owner domain.AccountID, pageToken string, limit int) ([]domain.AccountBalance, string, error) {
	args := m.Called(ctx, owner, pageToken, limit)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.AccountBalance), args.String(1), args.Error(2)
}
func (m *MockLedgerService) GetAdmin(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminInfo), args.Error(1)
}
func (m *MockLedgerService) Create(ctx context.Context, caller, issuer domain.AccountID, maxSupply domain.Amount) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, issuer, maxSupply))
}
func (m *MockLedgerService) Issue(ctx context.Context, caller, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, to, quantity, memo))
}
func (m *MockLedgerService) Retire(ctx context.Context, caller domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, quantity, memo))
}
func (m *MockLedgerService) Transfer(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, from, to, quantity, memo))
}
func (m *MockLedgerService) Open(ctx context.Context, caller, owner domain.AccountID, symbol domain.Symbol, ramPayer domain.AccountID) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, owner, symbol, ramPayer))
}
func (m *MockLedgerService) Close(ctx context.Context, caller, owner domain.AccountID, code domain.SymbolCode) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, owner, code))
}
func (m *MockLedgerService) AdminCreate(ctx context.Context, caller, adminUser domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, adminUser, quantity))
}
func (m *MockLedgerService) AdminUpdate(ctx context.Context, caller, oldAdmin, newAdmin domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, oldAdmin, newAdmin, quantity))
}
func (m *MockLedgerService) TransferAdmin(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	return m.event(m.Called(ctx, caller, from, to, quantity, memo))
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, account domain.AccountID) (*domain.DirectoryEntry, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryEntry), args.Error(1)
}
func (m *MockAccountService) ListKeys(ctx context.Context, caller domain.AccountID) ([]domain.AccountKey, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountKey), args.Error(1)
}
func (m *MockAccountService) Register(ctx context.Context, account domain.AccountID) (string, *domain.AccountKey, error) {
	args := m.Called(ctx, account)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.AccountKey), args.Error(2)
}
func (m *MockAccountService) CreateKey(ctx context.Context, caller domain.AccountID, name string, expiresIn *time.Duration) (string, *domain.AccountKey, error) {
	args := m.Called(ctx, caller, name, expiresIn)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.AccountKey), args.Error(2)
}
func (m *MockAccountService) RevokeKey(ctx context.Context, caller domain.AccountID, keyID string) error {
	args := m.Called(ctx, caller, keyID)
	return args.Error(0)
}
func (m *MockAccountService) ValidateKey(ctx context.Context, apiKey string) (domain.AccountID, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(domain.AccountID), args.Error(1)
}
func (m *MockAccountService) IssueToken(ctx context.Context, apiKey string) (string, time.Time, error) {
	args := m.Called(ctx, apiKey)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)
