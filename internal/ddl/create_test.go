package ddl

import (
	"strings"
	"testing"
)

var testTypes = map[Kind]string{KindKey: "TEXT", KindText: "TEXT", KindInt: "BIGINT", KindFloat: "DOUBLE PRECISION", KindDate: "TEXT"}

// TestBuildCreateTableSQL verifies rendering per dialect and that invalid
// definitions surface errors.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	orders := TableDef{
		FQN: "orders",
		Columns: []ColumnDef{
			{Name: "order_id", Kind: KindKey, PrimaryKey: true},
			{Name: "ship_date", Kind: KindDate, Nullable: true},
			{Name: "customer_id", Kind: KindKey},
		},
		ForeignKeys: []ForeignKey{{Column: "customer_id", RefTable: "customers", RefColumn: "customer_id"}},
	}

	tests := []struct {
		name        string
		def         TableDef
		dialect     Dialect
		wantSQL     string
		errContains string
	}{
		{
			name:    "double quotes with foreign key",
			def:     orders,
			dialect: Dialect{Name: "pg", Quote: QuoteDouble, Types: testTypes},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"orders\" (\n" +
				"  \"order_id\" TEXT NOT NULL,\n" +
				"  \"ship_date\" TEXT,\n" +
				"  \"customer_id\" TEXT NOT NULL,\n" +
				"  PRIMARY KEY (\"order_id\"),\n" +
				"  FOREIGN KEY (\"customer_id\") REFERENCES \"customers\" (\"customer_id\")\n" +
				");",
		},
		{
			name: "object id guard with brackets and explicit type",
			def: TableDef{FQN: "dbo.t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT", PrimaryKey: true, Default: "0"},
			}},
			dialect: Dialect{Name: "mssql", Quote: QuoteBracket, ObjectIDGuard: true},
			wantSQL: "IF OBJECT_ID(N'[dbo].[t]', N'U') IS NULL\nBEGIN\n  CREATE TABLE [dbo].[t] (\n" +
				"    [id] INT NOT NULL DEFAULT 0,\n" +
				"    PRIMARY KEY ([id])\n  );\nEND;",
		},
		{
			name:    "backticks",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a`b", Kind: KindInt, Nullable: true}}},
			dialect: Dialect{Name: "mysql", Quote: QuoteBacktick, Types: testTypes},
			wantSQL: "CREATE TABLE IF NOT EXISTS `t` (\n  `a``b` BIGINT\n);",
		},
		{
			name:        "empty FQN",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "unmapped kind",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", Kind: KindFloat}}},
			dialect:     Dialect{Name: "x", Types: map[Kind]string{}},
			errContains: "no SQL type",
		},
		{
			name: "foreign key on unknown column",
			def: TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "INT"}},
				ForeignKeys: []ForeignKey{{Column: "nope", RefTable: "p", RefColumn: "id"}}},
			errContains: "unknown column nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tt.def, tt.dialect)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("want error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL mismatch:\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}
