package repositories

import (
	"context"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// DirectoryReader looks up registered accounts.
type DirectoryReader interface {
	// FindAccount returns apperrors.ErrNotFound for unknown accounts.
	FindAccount(ctx context.Context, account domain.AccountID) (*domain.DirectoryEntry, error)
}

// DirectoryWriter registers accounts.
type DirectoryWriter interface {
	// SaveAccount inserts the entry; apperrors.ErrDuplicate if already registered.
	SaveAccount(ctx context.Context, entry domain.DirectoryEntry) error
}

// AccountKeyReader defines read operations for account API keys.
type AccountKeyReader interface {
	// FindKey returns apperrors.ErrNotFound for unknown key IDs.
	FindKey(ctx context.Context, keyID string) (*domain.AccountKey, error)

	// ListKeys returns all keys of an account ordered by ID.
	ListKeys(ctx context.Context, account domain.AccountID) ([]domain.AccountKey, error)
}

// AccountKeyWriter defines write operations for account API keys.
type AccountKeyWriter interface {
	SaveKey(ctx context.Context, key domain.AccountKey) error
	DeleteKey(ctx context.Context, account domain.AccountID, keyID string) error
}

// DirectoryRepositoryFacade combines account directory and key operations.
type DirectoryRepositoryFacade interface {
	DirectoryReader
	DirectoryWriter
	AccountKeyReader
	AccountKeyWriter
}
