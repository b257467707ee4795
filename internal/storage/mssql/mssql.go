// Package mssql registers the SQL Server backend (go-mssqldb) with the
// storage factory. Inserts use the driver's bulk copy.
package mssql

import (
	"context"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "mssql"

// Dialect renders T-SQL DDL. Keys are bounded so they can be indexed.
var Dialect = ddl.Dialect{
	Name:  Kind,
	Quote: ddl.QuoteBracket,
	Types: map[ddl.Kind]string{
		ddl.KindKey:   "NVARCHAR(255)",
		ddl.KindText:  "NVARCHAR(MAX)",
		ddl.KindInt:   "BIGINT",
		ddl.KindFloat: "FLOAT",
		ddl.KindDate:  "NVARCHAR(10)",
	},
	ObjectIDGuard: true,
}

// open is a test hook that points to Open by default.
var open = Open

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (db.DB, error) {
		return open(ctx, cfg.DSN)
	})
	storage.RegisterDDL(Kind, Dialect)
}

// Open validates dsn and opens a "sqlserver" pool whose CopyInto uses
// mssql.CopyIn.
func Open(ctx context.Context, dsn string) (db.DB, error) {
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("mssql: invalid DSN: %w", err)
	}
	return db.NewSQLDB(ctx, "sqlserver", dsn, db.SQLOptions{
		Placeholder: db.AtP,
		CopyIn:      bulkCopy,
	})
}

func bulkCopy(table string, columns []string) string {
	return mssql.CopyIn(table, mssql.BulkOptions{}, columns...)
}
