package repositories

// RepositoryProvider holds the storage handles needed by services.
type RepositoryProvider struct {
	// Store is the record store every registry is built on.
	Store RecordStoreWithTx
	// OpenStores binds the ledger registries to a store handle, typically
	// the transactional one handed out by Store.WithinTx.
	OpenStores func(store RecordStore) LedgerStores
	// OpenDirectory binds the account directory to a store handle.
	OpenDirectory func(store RecordStore) DirectoryRepositoryFacade
}
