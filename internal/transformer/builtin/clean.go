package builtin

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"salesetl/internal/records"
	"salesetl/internal/schema"
)

// DateLayout is the month/day/4-digit-year layout of the export. Go's "1"
// and "2" accept both padded and unpadded values.
const DateLayout = "1/2/2006"

// Number formats understood by Cleaner.
const (
	// NumberFormatEU: '.' groups thousands, ',' is the decimal mark.
	NumberFormatEU = "eu"
	// NumberFormatUS: ',' groups thousands, '.' is the decimal mark.
	NumberFormatUS = "us"
)

const nbsp = "\u00a0"

// Cleaner turns renamed rows into typed sales. It never rejects a row;
// values that cannot be parsed become null and are left to the rules.
type Cleaner struct {
	// NumberFormat is NumberFormatEU (default) or NumberFormatUS.
	NumberFormat string
	// DateLayout overrides DateLayout when set.
	DateLayout string
}

// Apply cleans rows in order. The input is not modified.
func (c Cleaner) Apply(in []records.Row) []records.Sale {
	layout := c.DateLayout
	if layout == "" {
		layout = DateLayout
	}
	thousands, decimal := ".", ","
	if strings.EqualFold(c.NumberFormat, NumberFormatUS) {
		thousands, decimal = ",", "."
	}

	out := make([]records.Sale, 0, len(in))
	for _, row := range in {
		r := row.Cells
		s := records.Sale{
			Line:  row.Line,
			RowID: rowID(r[schema.RowID]),
			// Order keys are taken verbatim; every other text column is trimmed.
			OrderID:      rawText(r, schema.OrderID),
			OrderDate:    parseDate(r, schema.OrderDate, layout),
			ShipDate:     parseDate(r, schema.ShipDate, layout),
			ShipMode:     trimmed(r, schema.ShipMode),
			CustomerID:   trimmed(r, schema.CustomerID),
			CustomerName: trimmed(r, schema.CustomerName),
			Segment:      trimmed(r, schema.Segment),
			Country:      trimmed(r, schema.Country),
			City:         trimmed(r, schema.City),
			State:        trimmed(r, schema.State),
			PostalCode:   trimmed(r, schema.PostalCode),
			Region:       trimmed(r, schema.Region),
			ProductID:    trimmed(r, schema.ProductID),
			Category:     trimmed(r, schema.Category),
			SubCategory:  trimmed(r, schema.SubCategory),
			ProductName:  trimmed(r, schema.ProductName),
			Sales:        ParseNumber(r, schema.Sales, thousands, decimal),
			Quantity:     ParseNumber(r, schema.Quantity, thousands, decimal),
			Discount:     ParseNumber(r, schema.Discount, thousands, decimal),
			Profit:       ParseNumber(r, schema.Profit, thousands, decimal),
		}

		// A shipment cannot precede its order, and a missing ship date
		// defaults to the order date.
		if s.OrderDate.Valid && (!s.ShipDate.Valid || s.ShipDate.Time.Before(s.OrderDate.Time)) {
			s.ShipDate = s.OrderDate
		}
		out = append(out, s)
	}
	return out
}

func rowID(v any) sql.NullInt64 {
	switch t := v.(type) {
	case int64:
		return sql.NullInt64{Int64: t, Valid: true}
	case int:
		return sql.NullInt64{Int64: int64(t), Valid: true}
	}
	return sql.NullInt64{}
}

func trimmed(r records.Record, col string) sql.NullString {
	s, ok := r.String(col)
	if !ok {
		return sql.NullString{}
	}
	return records.NullString(strings.TrimSpace(s))
}

func rawText(r records.Record, col string) sql.NullString {
	s, ok := r.String(col)
	if !ok {
		return sql.NullString{}
	}
	return records.NullString(s)
}

func parseDate(r records.Record, col, layout string) sql.NullTime {
	s, ok := r.String(col)
	if !ok {
		return sql.NullTime{}
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return sql.NullTime{}
	}
	return records.NullTime(t)
}

// ParseNumber normalizes a written number and parses it. NBSP and '%' are
// removed, every thousands separator is removed, and the decimal mark is
// rewritten to '.'. Unparseable or non-finite values are null, never zero.
func ParseNumber(r records.Record, col, thousands, decimal string) sql.NullFloat64 {
	s, ok := r.String(col)
	if !ok {
		return sql.NullFloat64{}
	}
	return NormalizeNumber(s, thousands, decimal)
}

// NormalizeNumber is ParseNumber for a single string.
func NormalizeNumber(s, thousands, decimal string) sql.NullFloat64 {
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, thousands, "")
	if decimal != "." {
		s = strings.ReplaceAll(s, decimal, ".")
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return records.NullFloat(f)
}
