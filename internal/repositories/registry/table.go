// Package registry implements the ledger tables on top of any record store.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

// table maps one record store table to a typed row.
type table[T any] struct {
	store portsrepo.RecordStore
	name  domain.Table
}

func newTable[T any](store portsrepo.RecordStore, name domain.Table) table[T] {
	return table[T]{store: store, name: name}
}

// get returns the decoded row and the raw record so callers can keep the payer.
func (t table[T]) get(ctx context.Context, scope, key string) (*T, *portsrepo.Record, error) {
	rec, err := t.store.Get(ctx, t.name, scope, key)
	if err != nil {
		return nil, nil, err
	}
	var row T
	if err := json.Unmarshal(rec.Value, &row); err != nil {
		return nil, nil, apperrors.NewAppError(500, fmt.Sprintf("failed to decode %s record %s/%s", t.name, scope, key), err)
	}
	return &row, rec, nil
}

func (t table[T]) exists(ctx context.Context, scope, key string) (bool, error) {
	return t.store.Exists(ctx, t.name, scope, key)
}

func (t table[T]) put(ctx context.Context, scope, key string, row T, payer domain.AccountID) error {
	value, err := json.Marshal(row)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to encode %s record %s/%s", t.name, scope, key), err)
	}
	return t.store.Upsert(ctx, t.name, scope, key, value, payer)
}

func (t table[T]) erase(ctx context.Context, scope, key string) error {
	return t.store.Erase(ctx, t.name, scope, key)
}

// list returns up to limit rows with key > after. A non-positive limit means no limit.
func (t table[T]) list(ctx context.Context, scope, after string, limit int) ([]T, error) {
	rows := make([]T, 0)
	err := t.store.Iterate(ctx, t.name, scope, after, func(rec portsrepo.Record) (bool, error) {
		if after != "" && rec.Key == after {
			return true, nil
		}
		var row T
		if err := json.Unmarshal(rec.Value, &row); err != nil {
			return false, apperrors.NewAppError(500, fmt.Sprintf("failed to decode %s record %s/%s", t.name, scope, rec.Key), err)
		}
		rows = append(rows, row)
		return limit <= 0 || len(rows) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// NewLedgerStores binds the currency, balance, admin and directory tables to store.
func NewLedgerStores(store portsrepo.RecordStore) portsrepo.LedgerStores {
	return portsrepo.LedgerStores{
		Currencies: NewCurrencyRegistry(store),
		Balances:   NewBalanceLedger(store),
		Admins:     NewAdminRegistry(store),
		Directory:  NewDirectory(store),
	}
}
