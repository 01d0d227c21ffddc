package leveldb

import (
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/token_ledger/internal/repositories/registry"
	"github.com/syndtr/goleveldb/leveldb"
)

// NewRepositoryProvider wires the registries onto a LevelDB record store.
func NewRepositoryProvider(db *leveldb.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Store:         NewRecordStore(db),
		OpenStores:    registry.NewLedgerStores,
		OpenDirectory: registry.NewDirectory,
	}
}
