package leveldb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const sep = byte(0)

// kv is the method set shared by *leveldb.DB and *leveldb.Transaction.
type kv interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
	Put(key, value []byte, wo *opt.WriteOptions) error
	Delete(key []byte, wo *opt.WriteOptions) error
}

type envelope struct {
	Payer domain.AccountID `json:"payer"`
	Value []byte           `json:"value"`
}

// recordOps implements portsrepo.RecordStore over any kv.
type recordOps struct {
	kv kv
}

var _ portsrepo.RecordStore = recordOps{}

// RecordStore keeps records in LevelDB under "table\x00scope\x00key".
type RecordStore struct {
	recordOps
	db *leveldb.DB
}

// NewRecordStore wraps an open LevelDB database. The store owns db from now on.
func NewRecordStore(db *leveldb.DB) *RecordStore {
	return &RecordStore{recordOps: recordOps{kv: db}, db: db}
}

var _ portsrepo.RecordStoreWithTx = (*RecordStore)(nil)

// WithinTx runs fn inside a LevelDB transaction. LevelDB admits one open
// transaction at a time, so concurrent units of work are serialized.
func (s *RecordStore) WithinTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.RecordStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			tr.Discard()
		}
	}()

	if err := fn(ctx, recordOps{kv: tr}); err != nil {
		return err
	}
	if err := tr.Commit(); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	committed = true
	return nil
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

func (o recordOps) Get(ctx context.Context, table domain.Table, scope, key string) (*portsrepo.Record, error) {
	k, err := recordKey(table, scope, key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := o.kv.Get(k, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to read %s record", table), err)
	}
	return decode(table, scope, key, raw)
}

func (o recordOps) Exists(ctx context.Context, table domain.Table, scope, key string) (bool, error) {
	k, err := recordKey(table, scope, key)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := o.kv.Has(k, nil)
	if err != nil {
		return false, apperrors.NewAppError(500, fmt.Sprintf("failed to probe %s record", table), err)
	}
	return ok, nil
}

func (o recordOps) Iterate(ctx context.Context, table domain.Table, scope, start string, fn func(rec portsrepo.Record) (bool, error)) error {
	prefix, err := scopePrefix(table, scope)
	if err != nil {
		return err
	}
	rng := util.BytesPrefix(prefix)
	if start != "" {
		rng.Start = append(append([]byte{}, prefix...), start...)
	}

	iter := o.kv.NewIterator(rng, nil)
	defer iter.Release()

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := string(bytes.TrimPrefix(iter.Key(), prefix))
		rec, err := decode(table, scope, key, iter.Value())
		if err != nil {
			return err
		}
		more, err := fn(*rec)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to iterate %s records", table), err)
	}
	return nil
}

func (o recordOps) Upsert(ctx context.Context, table domain.Table, scope, key string, value []byte, payer domain.AccountID) error {
	k, err := recordKey(table, scope, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Payer: payer, Value: value})
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to encode %s record", table), err)
	}
	if err := o.kv.Put(k, raw, nil); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to write %s record", table), err)
	}
	return nil
}

func (o recordOps) Erase(ctx context.Context, table domain.Table, scope, key string) error {
	k, err := recordKey(table, scope, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.kv.Delete(k, nil); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to erase %s record", table), err)
	}
	return nil
}

func decode(table domain.Table, scope, key string, raw []byte) (*portsrepo.Record, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("corrupt %s record %s/%s", table, scope, key), err)
	}
	return &portsrepo.Record{Table: table, Scope: scope, Key: key, Payer: env.Payer, Value: env.Value}, nil
}

func scopePrefix(table domain.Table, scope string) ([]byte, error) {
	for _, part := range []string{string(table), scope} {
		if part == "" || strings.IndexByte(part, sep) >= 0 {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid record address %q/%q", table, scope)
		}
	}
	buf := make([]byte, 0, len(table)+len(scope)+2)
	buf = append(buf, table...)
	buf = append(buf, sep)
	buf = append(buf, scope...)
	buf = append(buf, sep)
	return buf, nil
}

func recordKey(table domain.Table, scope, key string) ([]byte, error) {
	prefix, err := scopePrefix(table, scope)
	if err != nil {
		return nil, err
	}
	if key == "" || strings.IndexByte(key, sep) >= 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid record key %q", key)
	}
	return append(prefix, key...), nil
}
