package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgConnLike defines the minimal subset of methods used from *pgx.Conn.
// This seam allows injecting a test double that mimics *pgx.Conn behavior,
// enabling hermetic (non-networked) testing of the adapter.
type pgConnLike interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// pgDB is the Postgres adapter implementing DB over a single pgx connection.
type pgDB struct{ conn pgConnLike }

// NewPgDB connects to Postgres using pgx.Connect and wraps the connection
// in a pgDB. Callers are responsible for closing it via Close().
func NewPgDB(ctx context.Context, dsn string) (DB, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &pgDB{conn: c}, nil
}

func (p *pgDB) Exec(ctx context.Context, q string, args ...any) error {
	_, err := p.conn.Exec(ctx, q, args...)
	return err
}

func (p *pgDB) QueryInt(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	if err := p.conn.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *pgDB) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (p *pgDB) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

// pgTx wraps pgx.Tx to implement Tx.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.tx.Exec(ctx, q, args...)
	return err
}

// CopyInto performs a bulk insert using Postgres's native COPY FROM.
func (t *pgTx) CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return t.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

func (t *pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// newPgDBFromConn constructs a pgDB from a pgConnLike fake.
func newPgDBFromConn(c pgConnLike) *pgDB { return &pgDB{conn: c} }

// newPgTxForTest wraps a pgx.Tx fake into a pgTx for testing.
func newPgTxForTest(t pgx.Tx) *pgTx { return &pgTx{tx: t} }
