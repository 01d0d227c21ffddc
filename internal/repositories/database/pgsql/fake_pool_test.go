package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory ledger_records table that answers the statements
// issued by pgxRecordOps. Keys compare bytewise, as under COLLATE "C".
type fakeDB struct {
	records map[string]portsrepo.Record

	// iterateFrom records the lower bound of every Iterate batch query.
	iterateFrom []string
	iterateSQL  []string
	locks       int
}

func newFakeDB() *fakeDB {
	return &fakeDB{records: map[string]portsrepo.Record{}}
}

func recordAddr(table, scope, key string) string {
	return table + "\x00" + scope + "\x00" + key
}

func (db *fakeDB) clone() *fakeDB {
	c := &fakeDB{records: make(map[string]portsrepo.Record, len(db.records))}
	for k, v := range db.records {
		c.records[k] = v
	}
	return c
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "pg_advisory_xact_lock"):
		db.locks++
		return pgconn.NewCommandTag("SELECT 1"), nil
	case strings.Contains(sql, "INSERT INTO ledger_records"):
		table, scope, key := args[0].(string), args[1].(string), args[2].(string)
		if strings.ContainsRune(scope, 0) || strings.ContainsRune(key, 0) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "22021", Message: "invalid byte sequence for encoding \"UTF8\": 0x00"}
		}
		if scope == "" || key == "" {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23514", ConstraintName: "ledger_records_address_chk"}
		}
		db.records[recordAddr(table, scope, key)] = portsrepo.Record{
			Table: domain.Table(table),
			Scope: scope,
			Key:   key,
			Payer: domain.AccountID(args[3].(string)),
			Value: args[4].([]byte),
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM ledger_records"):
		delete(db.records, recordAddr(args[0].(string), args[1].(string), args[2].(string)))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	table, scope, from, limit := args[0].(string), args[1].(string), args[2].(string), args[3].(int)
	db.iterateFrom = append(db.iterateFrom, from)
	db.iterateSQL = append(db.iterateSQL, sql)

	var recs []portsrepo.Record
	for _, rec := range db.records {
		if string(rec.Table) == table && rec.Scope == scope && rec.Key >= from {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return &fakeRows{recs: recs}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	rec, ok := db.records[recordAddr(args[0].(string), args[1].(string), args[2].(string))]
	if strings.Contains(sql, "EXISTS") {
		return fakeRow{vals: []any{ok}}
	}
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{vals: []any{string(rec.Payer), rec.Value}}
}

func scanInto(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(vals))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = vals[i].(string)
		case *domain.AccountID:
			*d = domain.AccountID(vals[i].(string))
		case *[]byte:
			*d = vals[i].([]byte)
		case *bool:
			*d = vals[i].(bool)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(dest, r.vals)
}

type fakeRows struct {
	recs   []portsrepo.Record
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.recs) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) current() []any {
	rec := r.recs[r.pos-1]
	return []any{rec.Key, string(rec.Payer), rec.Value}
}

func (r *fakeRows) Scan(dest ...any) error { return scanInto(dest, r.current()) }

func (r *fakeRows) Values() ([]any, error) { return r.current(), nil }

// fakePool hands out transactions that work on a copy of the committed
// table and publish it on Commit.
type fakePool struct {
	*fakeDB
	txs []*fakeTx
}

var _ ConnPool = (*fakePool)(nil)

func newFakePool() *fakePool {
	return &fakePool{fakeDB: newFakeDB()}
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{db: p.fakeDB.clone(), pool: p}
	p.txs = append(p.txs, tx)
	return tx, nil
}

func (p *fakePool) Close() {}

type fakeTx struct {
	pgx.Tx
	db         *fakeDB
	pool       *fakePool
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	tx.pool.records = tx.db.records
	tx.pool.locks += tx.db.locks
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}
