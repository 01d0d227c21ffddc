package pgsql

import (
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/token_ledger/internal/repositories/registry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the registries onto the Postgres record store.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	store := newPgxRecordStore(dbPool)
	return portsrepo.RepositoryProvider{
		Store:         store,
		OpenStores:    registry.NewLedgerStores,
		OpenDirectory: registry.NewDirectory,
	}
}
