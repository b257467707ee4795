// Package records holds the transient row shapes that flow through one
// pipeline run. Nothing in this package is persisted directly.
package records

import (
	"database/sql"
	"time"
)

// Record is one parsed input row keyed by column label. Before renaming the
// keys are source labels ("Order ID"); afterwards they are canonical names
// ("order_id"). Cells hold a string, an int64 for integer columns, or nil
// for a null cell.
type Record map[string]any

// String returns the text value stored under key and whether it was a
// non-null string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Sale is a cleaned sales row. Nullable columns use the database/sql null
// wrappers so that "absent" stays distinct from the zero value all the way
// into the store.
type Sale struct {
	// Line is the 1-based physical line of the row in the source file.
	Line int

	RowID sql.NullInt64

	OrderID   sql.NullString
	OrderDate sql.NullTime
	ShipDate  sql.NullTime
	ShipMode  sql.NullString

	CustomerID   sql.NullString
	CustomerName sql.NullString
	Segment      sql.NullString
	Country      sql.NullString
	City         sql.NullString
	State        sql.NullString
	PostalCode   sql.NullString
	Region       sql.NullString

	ProductID   sql.NullString
	Category    sql.NullString
	SubCategory sql.NullString
	ProductName sql.NullString

	Sales    sql.NullFloat64
	Quantity sql.NullFloat64
	Discount sql.NullFloat64
	Profit   sql.NullFloat64

	// OrderDateISO and ShipDateISO are filled by the rule validator once the
	// row has been accepted. ShipDateISO stays invalid when there is no ship
	// date, which is different from an empty string.
	OrderDateISO string
	ShipDateISO  sql.NullString
}

// NullTime is a small helper for building a valid sql.NullTime.
func NullTime(t time.Time) sql.NullTime { return sql.NullTime{Time: t, Valid: true} }

// NullString is a small helper for building a valid sql.NullString.
func NullString(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

// NullFloat is a small helper for building a valid sql.NullFloat64.
func NullFloat(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

// Row is a Record together with the physical line it was read from.
type Row struct {
	Line  int
	Cells Record
}
