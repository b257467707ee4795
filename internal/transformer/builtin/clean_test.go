package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/records"
	"salesetl/internal/schema"
)

func row(line int, cells records.Record) records.Row {
	return records.Row{Line: line, Cells: cells}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

/*
TestNormalizeNumber covers the written-number repairs:
  - thousands separators are removed and the decimal mark becomes '.'
  - NBSP and '%' are stripped
  - garbage and non-finite values become null, not zero
*/
func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format string
		want   float64
		valid  bool
	}{
		{name: "eu thousands and decimal", in: "1.234,56", format: NumberFormatEU, want: 1234.56, valid: true},
		{name: "eu plain decimal", in: "0,2", format: NumberFormatEU, want: 0.2, valid: true},
		{name: "eu dot is thousands", in: "2.5", format: NumberFormatEU, want: 25, valid: true},
		{name: "nbsp and spaces", in: " 1\u00a0234,5 ", format: NumberFormatEU, want: 1234.5, valid: true},
		{name: "percent sign", in: "20%", format: NumberFormatEU, want: 20, valid: true},
		{name: "negative", in: "-12,5", format: NumberFormatEU, want: -12.5, valid: true},
		{name: "us thousands", in: "1,234.56", format: NumberFormatUS, want: 1234.56, valid: true},
		{name: "garbage", in: "abc", format: NumberFormatEU},
		{name: "empty", in: "  ", format: NumberFormatEU},
		{name: "nan text", in: "NaN", format: NumberFormatEU},
		{name: "infinity", in: "Inf", format: NumberFormatEU},
		{name: "hex", in: "0x10", format: NumberFormatEU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, dec := ".", ","
			if tt.format == NumberFormatUS {
				th, dec = ",", "."
			}
			got := NormalizeNumber(tt.in, th, dec)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Float64, 1e-9)
			}
		})
	}
}

// TestCleaner_Dates verifies date parsing and the ship date repair rule.
func TestCleaner_Dates(t *testing.T) {
	tests := []struct {
		name      string
		order     any
		ship      any
		wantOrder time.Time
		wantShip  time.Time
		shipValid bool
	}{
		{name: "ship after order", order: "1/2/2020", ship: "01/05/2020", wantOrder: date(2020, 1, 2), wantShip: date(2020, 1, 5), shipValid: true},
		{name: "ship before order is repaired", order: "03/10/2021", ship: "3/1/2021", wantOrder: date(2021, 3, 10), wantShip: date(2021, 3, 10), shipValid: true},
		{name: "missing ship defaults to order", order: "12/31/2019", ship: nil, wantOrder: date(2019, 12, 31), wantShip: date(2019, 12, 31), shipValid: true},
		{name: "bad ship defaults to order", order: "12/31/2019", ship: "31/12/2019", wantOrder: date(2019, 12, 31), wantShip: date(2019, 12, 31), shipValid: true},
		{name: "bad order keeps ship", order: "2019-12-31", ship: "1/1/2020", wantShip: date(2020, 1, 1), shipValid: true},
		{name: "both missing", order: nil, ship: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cleaner{}.Apply([]records.Row{row(2, records.Record{
				schema.OrderDate: tt.order,
				schema.ShipDate:  tt.ship,
			})})
			require.Len(t, got, 1)
			s := got[0]
			assert.Equal(t, !tt.wantOrder.IsZero(), s.OrderDate.Valid)
			if s.OrderDate.Valid {
				assert.True(t, tt.wantOrder.Equal(s.OrderDate.Time))
			}
			assert.Equal(t, tt.shipValid, s.ShipDate.Valid)
			if tt.shipValid {
				assert.True(t, tt.wantShip.Equal(s.ShipDate.Time), "ship=%v", s.ShipDate.Time)
			}
		})
	}
}

// TestCleaner_Text verifies trimming, empty-string retention, verbatim
// order ids, row ids, and that the input rows are not modified.
func TestCleaner_Text(t *testing.T) {
	in := []records.Row{row(7, records.Record{
		schema.RowID:        int64(42),
		schema.OrderID:      " CA-1 ",
		schema.CustomerID:   "  CG-12520\t",
		schema.CustomerName: "   ",
		schema.City:         nil,
		schema.ShipMode:     " Second Class ",
		schema.Sales:        "261,96",
	})}

	got := Cleaner{}.Apply(in)
	require.Len(t, got, 1)
	s := got[0]

	assert.Equal(t, 7, s.Line)
	assert.Equal(t, int64(42), s.RowID.Int64)
	assert.True(t, s.RowID.Valid)
	assert.Equal(t, " CA-1 ", s.OrderID.String)
	assert.Equal(t, "CG-12520", s.CustomerID.String)
	assert.True(t, s.CustomerName.Valid)
	assert.Equal(t, "", s.CustomerName.String)
	assert.False(t, s.City.Valid)
	assert.Equal(t, "Second Class", s.ShipMode.String)
	assert.InDelta(t, 261.96, s.Sales.Float64, 1e-9)
	assert.False(t, s.Profit.Valid)

	assert.Equal(t, "  CG-12520\t", in[0].Cells[schema.CustomerID])
}

// TestCleaner_NumberFormatUS checks the alternate separator pair.
func TestCleaner_NumberFormatUS(t *testing.T) {
	got := Cleaner{NumberFormat: "US"}.Apply([]records.Row{row(2, records.Record{
		schema.Sales: "1,234.5", schema.Discount: "0.2",
	})})
	require.Len(t, got, 1)
	assert.InDelta(t, 1234.5, got[0].Sales.Float64, 1e-9)
	assert.InDelta(t, 0.2, got[0].Discount.Float64, 1e-9)
}
