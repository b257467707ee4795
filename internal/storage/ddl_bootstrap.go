package storage

import (
	"context"
	"fmt"
	"sync"

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/schema"
)

var (
	ddlMu      sync.RWMutex
	ddlDialect = map[string]ddl.Dialect{}
)

// RegisterDDL registers (or replaces) the DDL dialect used to create the
// sales tables for the given storage kind. It is typically called from
// backend packages' init() functions.
func RegisterDDL(kind string, d ddl.Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlDialect[kind] = d
}

// keyColumns are the natural and foreign key columns; they are short text
// identifiers in every table that carries them.
var keyColumns = map[string]bool{
	schema.CustomerID: true,
	schema.ProductID:  true,
	schema.OrderID:    true,
}

// requiredColumns are NOT NULL in the persisted schema. Everything else may
// be null.
var requiredColumns = map[string]bool{
	schema.RowID:      true,
	schema.CustomerID: true,
	schema.ProductID:  true,
	schema.OrderID:    true,
	schema.OrderDate:  true,
	schema.ShipMode:   true,
	schema.Sales:      true,
	schema.Quantity:   true,
	schema.Discount:   true,
}

func columnKind(name string) ddl.Kind {
	switch {
	case keyColumns[name]:
		return ddl.KindKey
	case name == schema.RowID:
		return ddl.KindInt
	case name == schema.OrderDate || name == schema.ShipDate:
		return ddl.KindDate
	case name == schema.Sales || name == schema.Quantity || name == schema.Discount || name == schema.Profit:
		return ddl.KindFloat
	}
	return ddl.KindText
}

// TableDefs returns the four sales tables, parents first, with primary and
// foreign keys.
func TableDefs() []ddl.TableDef {
	fks := map[string][]ddl.ForeignKey{
		schema.OrdersTable.Name: {
			{Column: schema.CustomerID, RefTable: schema.CustomersTable.Name, RefColumn: schema.CustomerID},
		},
		schema.OrderItemsTable.Name: {
			{Column: schema.OrderID, RefTable: schema.OrdersTable.Name, RefColumn: schema.OrderID},
			{Column: schema.ProductID, RefTable: schema.ProductsTable.Name, RefColumn: schema.ProductID},
		},
	}

	out := make([]ddl.TableDef, 0, len(schema.Tables))
	for _, t := range schema.Tables {
		td := ddl.TableDef{FQN: t.Name, ForeignKeys: fks[t.Name]}
		for _, c := range t.Columns {
			td.Columns = append(td.Columns, ddl.ColumnDef{
				Name:       c,
				Kind:       columnKind(c),
				Nullable:   !requiredColumns[c],
				PrimaryKey: c == t.Key,
			})
		}
		out = append(out, td)
	}
	return out
}

// EnsureSchema creates any missing sales table using the dialect registered
// for kind. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, kind string, conn db.DB) error {
	ddlMu.RLock()
	d, ok := ddlDialect[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	for _, td := range TableDefs() {
		stmt, err := ddl.BuildCreateTableSQL(td, d)
		if err != nil {
			return err
		}
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", td.FQN, err)
		}
	}
	return nil
}
