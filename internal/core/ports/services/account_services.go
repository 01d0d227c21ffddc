package services

import (
	"context"
	"time"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// AccountKeyValidator resolves an API key to the account it belongs to.
type AccountKeyValidator interface {
	// ValidateKey checks the key and updates its last-used timestamp.
	ValidateKey(ctx context.Context, apiKey string) (domain.AccountID, error)
}

// AccountReaderSvc defines read operations on the account directory.
type AccountReaderSvc interface {
	GetAccount(ctx context.Context, account domain.AccountID) (*domain.DirectoryEntry, error)
	ListKeys(ctx context.Context, caller domain.AccountID) ([]domain.AccountKey, error)
}

// AccountWriterSvc defines write operations on the account directory.
type AccountWriterSvc interface {
	// Register adds account to the directory and returns its first API key.
	// The plaintext key is only available in this return value.
	Register(ctx context.Context, account domain.AccountID) (string, *domain.AccountKey, error)

	// CreateKey adds another API key to caller.
	CreateKey(ctx context.Context, caller domain.AccountID, name string, expiresIn *time.Duration) (string, *domain.AccountKey, error)

	// RevokeKey deletes one API key of caller.
	RevokeKey(ctx context.Context, caller domain.AccountID, keyID string) error
}

// TokenIssuerSvc exchanges API keys for short-lived bearer tokens.
type TokenIssuerSvc interface {
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountKeyValidator
	TokenIssuerSvc
}
