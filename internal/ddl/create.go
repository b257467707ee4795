// Package ddl defines a small, backend-agnostic model for SQL DDL and
// renders CREATE TABLE statements from it for a given Dialect.
//
// The renderer:
//   - quotes identifiers with Dialect.Quote, segment by segment for dotted names
//   - emits CREATE TABLE IF NOT EXISTS, or an OBJECT_ID guard for T-SQL
//   - treats ColumnDef.Default as raw SQL
//   - renders PRIMARY KEY and FOREIGN KEY as separate table constraints
package ddl

import (
	"fmt"
	"strings"
)

// Standard identifier quoting styles.
var (
	QuoteDouble   = func(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
	QuoteBacktick = func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
	QuoteBracket  = func(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }
)

// BuildCreateTableSQL renders t for dialect d:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  PRIMARY KEY ("pk"),
//	  FOREIGN KEY ("fk") REFERENCES "parent" ("id")
//	);
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}
	quote := d.Quote
	if quote == nil {
		quote = QuoteDouble
	}

	cols := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	pks := make([]string, 0, 1)
	known := make(map[string]struct{}, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			typ = d.Types[c.Kind]
		}
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s has no SQL type for kind %q", d.Name, name, c.Kind)
		}
		known[name] = struct{}{}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		if _, ok := known[fk.Column]; !ok {
			return "", fmt.Errorf("%s ddl: foreign key on unknown column %s in table %s", d.Name, fk.Column, fqn)
		}
		cols = append(cols, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(fk.Column), quoteFQN(fk.RefTable, quote), quote(fk.RefColumn)))
	}

	name := quoteFQN(fqn, quote)
	if d.ObjectIDGuard {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			name, name, strings.Join(cols, ",\n    "),
		), nil
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		name, strings.Join(cols, ",\n  "),
	), nil
}

// quoteFQN quotes a possibly schema-qualified table name segment by segment.
func quoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
