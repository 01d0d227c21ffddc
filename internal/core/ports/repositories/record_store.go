package repositories

import (
	"context"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// Record is one entry of a scoped table.
type Record struct {
	Table domain.Table
	Scope string
	Key   string
	// Payer is the account charged for the storage of the record.
	Payer domain.AccountID
	Value []byte
}

// RecordReader defines read operations on scoped tables.
type RecordReader interface {
	// Get returns apperrors.ErrNotFound when no record exists under (table, scope, key).
	Get(ctx context.Context, table domain.Table, scope, key string) (*Record, error)

	// Exists reports whether a record exists under (table, scope, key).
	Exists(ctx context.Context, table domain.Table, scope, key string) (bool, error)

	// Iterate visits records of one scope with key >= start in ascending key
	// order until fn returns false or an error.
	Iterate(ctx context.Context, table domain.Table, scope, start string, fn func(rec Record) (bool, error)) error
}

// RecordWriter defines write operations on scoped tables.
type RecordWriter interface {
	// Upsert overwrites the record in place if present and inserts it otherwise.
	Upsert(ctx context.Context, table domain.Table, scope, key string, value []byte, payer domain.AccountID) error

	// Erase removes the record. Erasing an absent record is a no-op.
	Erase(ctx context.Context, table domain.Table, scope, key string) error
}

// RecordStore combines read and write access to scoped tables.
type RecordStore interface {
	RecordReader
	RecordWriter
}
