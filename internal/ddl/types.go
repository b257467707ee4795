package ddl

// Kind is a logical column type. Dialects map kinds to concrete SQL types.
type Kind string

const (
	// KindKey is a short text identifier used in primary and foreign keys.
	KindKey Kind = "key"
	// KindText is free-form text.
	KindText Kind = "text"
	// KindInt is a 64-bit integer.
	KindInt Kind = "int"
	// KindFloat is a double-precision number.
	KindFloat Kind = "float"
	// KindDate is an ISO calendar date stored as text (YYYY-MM-DD).
	KindDate Kind = "date"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Kind: logical type, resolved through the dialect when SQLType is empty
//   - SQLType: explicit SQL type, overrides Kind
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	Kind       Kind
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// ForeignKey references RefTable(RefColumn) from Column.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef holds the table name (FQN), an ordered list of columns and its
// foreign keys. The FQN may be dotted ("schema.table"); renderers quote each
// segment.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
}

// Dialect captures what differs between backends when rendering DDL.
type Dialect struct {
	Name string
	// Quote quotes a single identifier segment.
	Quote func(string) string
	// Types maps logical kinds to SQL types.
	Types map[Kind]string
	// ObjectIDGuard wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL block
	// for T-SQL, which has no CREATE TABLE IF NOT EXISTS.
	ObjectIDGuard bool
}
