// Package sqlite registers the SQLite backend (modernc.org/sqlite, pure Go)
// with the storage factory. It is the default destination store.
package sqlite

import (
	"context"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// Dialect renders SQLite DDL. Dates are ISO text.
var Dialect = ddl.Dialect{
	Name:  Kind,
	Quote: ddl.QuoteDouble,
	Types: map[ddl.Kind]string{
		ddl.KindKey:   "TEXT",
		ddl.KindText:  "TEXT",
		ddl.KindInt:   "INTEGER",
		ddl.KindFloat: "REAL",
		ddl.KindDate:  "TEXT",
	},
}

// open is a test hook that points to Open by default.
var open = Open

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (db.DB, error) {
		return open(ctx, cfg.DSN)
	})
	storage.RegisterDDL(Kind, Dialect)
}

// Open opens dsn with foreign key enforcement switched on. The pool is
// capped at one connection so that ":memory:" databases are shared by every
// statement of a run.
//
// dsn is a file path or URI understood by the driver, e.g.:
//
//	"sales.db"
//	"file:sales.db?cache=shared"
//	":memory:"
func Open(ctx context.Context, dsn string) (db.DB, error) {
	return db.NewSQLDB(ctx, "sqlite", WithForeignKeys(dsn), db.SQLOptions{
		Placeholder:  db.Question,
		MaxOpenConns: 1,
	})
}

// WithForeignKeys appends the driver pragma that enables foreign key
// enforcement on every new connection, unless dsn already sets it.
func WithForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
