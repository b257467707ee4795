// Package mysql registers the MySQL backend (go-sql-driver/mysql) with the
// storage factory. Inserts are sent as multi-row INSERT statements.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "mysql"

// RowsPerInsert bounds a multi-row INSERT well below the 65535 placeholder
// limit for the widest table.
const RowsPerInsert = 500

// Dialect renders MySQL DDL. Keys are bounded so they can be indexed.
var Dialect = ddl.Dialect{
	Name:  Kind,
	Quote: ddl.QuoteBacktick,
	Types: map[ddl.Kind]string{
		ddl.KindKey:   "VARCHAR(255)",
		ddl.KindText:  "TEXT",
		ddl.KindInt:   "BIGINT",
		ddl.KindFloat: "DOUBLE",
		ddl.KindDate:  "VARCHAR(10)",
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

// Open validates dsn and opens a "mysql" pool.
func Open(ctx context.Context, dsn string) (db.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid DSN: %w", err)
	}
	return db.NewSQLDB(ctx, "mysql", cfg.FormatDSN(), db.SQLOptions{
		Placeholder: db.Question,
		MultiRow:    RowsPerInsert,
	})
}
