// Package postgres registers the PostgreSQL backend (pgx) with the storage
// factory. Inserts use the COPY protocol.
package postgres

import (
	"context"

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "postgres"

// Dialect renders PostgreSQL DDL.
var Dialect = ddl.Dialect{
	Name:  Kind,
	Quote: ddl.QuoteDouble,
	Types: map[ddl.Kind]string{
		ddl.KindKey:   "TEXT",
		ddl.KindText:  "TEXT",
		ddl.KindInt:   "BIGINT",
		ddl.KindFloat: "DOUBLE PRECISION",
		ddl.KindDate:  "TEXT",
	},
}

// open is a test hook that points to db.NewPgDB by default.
var open = db.NewPgDB

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (db.DB, error) {
		return open(ctx, cfg.DSN)
	})
	storage.RegisterDDL(Kind, Dialect)
}
