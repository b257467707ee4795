package mysql

import (
	"context"
	"strings"
	"testing"

	"salesetl/internal/db"
	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

func TestRegistrationUsesOpenHook(t *testing.T) {
	orig := open
	defer func() { open = orig }()

	var gotDSN string
	open = func(_ context.Context, dsn string) (db.DB, error) {
		gotDSN = dsn
		return nil, nil
	}
	dsn := "etl:secret@tcp(localhost:3306)/sales"
	if _, err := storage.Open(context.Background(), storage.Config{Kind: Kind, DSN: dsn}); err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	if gotDSN != dsn {
		t.Fatalf("hook dsn = %q, want %q", gotDSN, dsn)
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, err := Open(context.Background(), "no-slash-here")
	if err == nil || !strings.Contains(err.Error(), "invalid DSN") {
		t.Fatalf("Open() error = %v, want invalid DSN", err)
	}
}

func TestDialect_Customers(t *testing.T) {
	got, err := ddl.BuildCreateTableSQL(storage.TableDefs()[0], Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `customers`",
		"`customer_id` VARCHAR(255) NOT NULL",
		"`customer_name` TEXT,",
		"PRIMARY KEY (`customer_id`)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DDL missing %q:\n%s", want, got)
		}
	}
}
