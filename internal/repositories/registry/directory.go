package registry

import (
	"context"
	"errors"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

type keyIndexEntry struct {
	Account domain.AccountID `json:"account"`
}

type directory struct {
	entries table[domain.DirectoryEntry]
	keys    table[domain.AccountKey]
	index   table[keyIndexEntry]
}

// NewDirectory creates the account directory. Keys live in the owner's scope
// and are indexed globally by key ID.
func NewDirectory(store portsrepo.RecordStore) portsrepo.DirectoryRepositoryFacade {
	return &directory{
		entries: newTable[domain.DirectoryEntry](store, domain.TableDirectory),
		keys:    newTable[domain.AccountKey](store, domain.TableKeys),
		index:   newTable[keyIndexEntry](store, domain.TableKeyIndex),
	}
}

var _ portsrepo.DirectoryRepositoryFacade = (*directory)(nil)

func (d *directory) FindAccount(ctx context.Context, account domain.AccountID) (*domain.DirectoryEntry, error) {
	entry, _, err := d.entries.get(ctx, domain.GlobalScope, string(account))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "account %s does not exist", account)
		}
		return nil, err
	}
	return entry, nil
}

func (d *directory) SaveAccount(ctx context.Context, entry domain.DirectoryEntry) error {
	exists, err := d.entries.exists(ctx, domain.GlobalScope, string(entry.Account))
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Wrap(apperrors.ErrDuplicate, "account %s already registered", entry.Account)
	}
	return d.entries.put(ctx, domain.GlobalScope, string(entry.Account), entry, entry.Account)
}

func (d *directory) FindKey(ctx context.Context, keyID string) (*domain.AccountKey, error) {
	idx, _, err := d.index.get(ctx, domain.GlobalScope, keyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "key %s does not exist", keyID)
		}
		return nil, err
	}
	key, _, err := d.keys.get(ctx, string(idx.Account), keyID)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (d *directory) ListKeys(ctx context.Context, account domain.AccountID) ([]domain.AccountKey, error) {
	return d.keys.list(ctx, string(account), "", 0)
}

func (d *directory) SaveKey(ctx context.Context, key domain.AccountKey) error {
	if err := d.keys.put(ctx, string(key.Account), key.ID, key, key.Account); err != nil {
		return err
	}
	return d.index.put(ctx, domain.GlobalScope, key.ID, keyIndexEntry{Account: key.Account}, key.Account)
}

func (d *directory) DeleteKey(ctx context.Context, account domain.AccountID, keyID string) error {
	if err := d.keys.erase(ctx, string(account), keyID); err != nil {
		return err
	}
	return d.index.erase(ctx, domain.GlobalScope, keyID)
}
