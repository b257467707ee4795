// Package db provides the database adapters used by the loader: a pgx
// adapter for Postgres and a portable database/sql adapter for everything
// else. Both satisfy the DB and Tx interfaces so the loader and verifier
// stay backend-agnostic.
package db

import "context"

// DB is a connection capable of starting transactions, executing DDL/DML and
// answering single-value count queries.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) error
	// QueryInt runs a query returning one integer in one row, typically a
	// COUNT(*).
	QueryInt(ctx context.Context, sql string, args ...any) (int64, error)
	BeginTx(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx (transaction) supports Exec, bulk inserts, and lifecycle.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	CopyInto(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
