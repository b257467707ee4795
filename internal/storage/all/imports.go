// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: importing it runs the init functions of
// each backend, which register their factories and DDL dialects. After
// that the following kinds are available to storage.Open and
// storage.EnsureSchema:
//
//   - "sqlite"   (salesetl/internal/storage/sqlite)
//   - "postgres" (salesetl/internal/storage/postgres)
//   - "mssql"    (salesetl/internal/storage/mssql)
//   - "mysql"    (salesetl/internal/storage/mysql)
//
// A binary that needs only a subset can import the backend packages
// directly instead.
package all

import (
	_ "salesetl/internal/storage/mssql"
	_ "salesetl/internal/storage/mysql"
	_ "salesetl/internal/storage/postgres"
	_ "salesetl/internal/storage/sqlite"
)
