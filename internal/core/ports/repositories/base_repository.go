package repositories

import (
	"context"
)

// TransactionManager runs a unit of work atomically. fn sees its own writes;
// a nil return commits every write, any error discards all of them.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store RecordStore) error) error
}

// RecordStoreWithTx is a store that can be used directly for reads and
// single writes, and that can open transactional units of work.
type RecordStoreWithTx interface {
	RecordStore
	TransactionManager
	Close() error
}
