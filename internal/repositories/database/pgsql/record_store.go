package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ledgerLockID is the advisory lock held by every unit of work so that
// operations apply one at a time.
const ledgerLockID int64 = 0x746f6b656e

const iterateBatchSize = 128

// SQLSTATE codes reported for record addresses the table rejects.
const (
	checkViolation           = "23514"
	characterNotInRepertoire = "22021"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRecordOps struct {
	q querier
}

var _ portsrepo.RecordStore = (*pgxRecordOps)(nil)

// PgxRecordStore keeps every record as a row of ledger_records.
type PgxRecordStore struct {
	BaseRepository
	pgxRecordOps
}

// newPgxRecordStore creates a record store backed by the given pool.
func newPgxRecordStore(pool ConnPool) portsrepo.RecordStoreWithTx {
	return &PgxRecordStore{
		BaseRepository: BaseRepository{Pool: pool},
		pgxRecordOps:   pgxRecordOps{q: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.RecordStoreWithTx = (*PgxRecordStore)(nil)

// WithinTx runs fn in a database transaction holding the ledger advisory lock.
func (s *PgxRecordStore) WithinTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.RecordStore) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := s.Rollback(ctx, tx); rbErr != nil {
			slog.Default().Error("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockID); err != nil {
		return apperrors.NewAppError(500, "failed to acquire ledger lock", err)
	}

	if err := fn(ctx, &pgxRecordOps{q: tx}); err != nil {
		return err
	}
	return s.Commit(ctx, tx)
}

// Close closes the connection pool.
func (s *PgxRecordStore) Close() error {
	s.Pool.Close()
	return nil
}

func (o *pgxRecordOps) Get(ctx context.Context, table domain.Table, scope, key string) (*portsrepo.Record, error) {
	query := `
		SELECT payer, value
		FROM ledger_records
		WHERE table_name = $1 AND scope = $2 AND record_key = $3;
	`
	rec := portsrepo.Record{Table: table, Scope: scope, Key: key}
	err := o.q.QueryRow(ctx, query, string(table), scope, key).Scan(&rec.Payer, &rec.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s record %s/%s: %w", table, scope, key, err)
	}
	return &rec, nil
}

func (o *pgxRecordOps) Exists(ctx context.Context, table domain.Table, scope, key string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_records
			WHERE table_name = $1 AND scope = $2 AND record_key = $3
		);
	`
	var exists bool
	if err := o.q.QueryRow(ctx, query, string(table), scope, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to probe %s record %s/%s: %w", table, scope, key, err)
	}
	return exists, nil
}

// Iterate reads the scope in batches so fn may issue queries on the same connection.
func (o *pgxRecordOps) Iterate(ctx context.Context, table domain.Table, scope, start string, fn func(rec portsrepo.Record) (bool, error)) error {
	query := `
		SELECT record_key, payer, value
		FROM ledger_records
		WHERE table_name = $1 AND scope = $2 AND record_key COLLATE "C" >= $3
		ORDER BY record_key COLLATE "C"
		LIMIT $4;
	`
	from := start
	skip := ""
	for {
		rows, err := o.q.Query(ctx, query, string(table), scope, from, iterateBatchSize+1)
		if err != nil {
			return fmt.Errorf("failed to query %s records: %w", table, err)
		}
		batch, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (portsrepo.Record, error) {
			rec := portsrepo.Record{Table: table, Scope: scope}
			err := row.Scan(&rec.Key, &rec.Payer, &rec.Value)
			return rec, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s records: %w", table, err)
		}

		seen := 0
		for _, rec := range batch {
			if rec.Key == skip {
				continue
			}
			seen++
			more, err := fn(rec)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
			from, skip = rec.Key, rec.Key
		}
		if seen == 0 || len(batch) <= iterateBatchSize {
			return nil
		}
	}
}

func (o *pgxRecordOps) Upsert(ctx context.Context, table domain.Table, scope, key string, value []byte, payer domain.AccountID) error {
	query := `
		INSERT INTO ledger_records (table_name, scope, record_key, payer, value, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (table_name, scope, record_key) DO UPDATE SET
			payer = EXCLUDED.payer,
			value = EXCLUDED.value,
			last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := o.q.Exec(ctx, query, string(table), scope, key, string(payer), value); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == checkViolation || pgErr.Code == characterNotInRepertoire) {
			return apperrors.Wrap(apperrors.ErrValidation, "invalid record address %s/%s/%s", table, scope, key)
		}
		return fmt.Errorf("failed to upsert %s record %s/%s: %w", table, scope, key, err)
	}
	return nil
}

func (o *pgxRecordOps) Erase(ctx context.Context, table domain.Table, scope, key string) error {
	query := `DELETE FROM ledger_records WHERE table_name = $1 AND scope = $2 AND record_key = $3;`
	if _, err := o.q.Exec(ctx, query, string(table), scope, key); err != nil {
		return fmt.Errorf("failed to erase %s record %s/%s: %w", table, scope, key, err)
	}
	return nil
}
