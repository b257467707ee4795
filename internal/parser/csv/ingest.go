package csv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"salesetl/internal/datasource"
	"salesetl/internal/records"
)

// DefaultNullValues are the cell values read as null. The list mirrors the
// markers that spreadsheet exports and dataframe tools commonly emit.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultIntColumns are the source columns coerced to int64 on ingest. Every
// other column is kept as text; numeric measures stay raw so the cleaner can
// repair locale formatting first.
var DefaultIntColumns = []string{"Row ID"}

// Options configures Ingest. The zero value sniffs the delimiter and uses
// the default null markers and integer columns.
type Options struct {
	// Comma forces the delimiter. Zero means detect it from the input.
	Comma rune

	// NullValues overrides DefaultNullValues when non-nil.
	NullValues []string

	// IntColumns overrides DefaultIntColumns when non-nil.
	IntColumns []string
}

// Table is the typed result of ingesting one source.
type Table struct {
	Header []string
	Rows   []records.Row

	// Comma is the delimiter that was used (detected or forced).
	Comma rune
	// Bytes is the size of the source after BOM removal.
	Bytes int
	// Fingerprint is the xxh3 hash of the source bytes. Two runs over the
	// same file report the same value.
	Fingerprint uint64
}

// Ingest reads src completely and returns its rows in source order. Any
// read failure or structural defect is returned as *IngestionError.
func Ingest(ctx context.Context, src datasource.Source, opt Options) (*Table, error) {
	fail := func(line int, err error) (*Table, error) {
		return nil, &IngestionError{Source: src.Name(), Line: line, Err: err}
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return fail(0, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fail(0, fmt.Errorf("read: %w", err))
	}
	raw = stripBOM(raw)

	comma := opt.Comma
	if comma == 0 {
		sample := raw
		truncated := false
		if len(sample) > sniffBytes {
			sample, truncated = sample[:sniffBytes], true
		}
		comma = Sniff(sample, truncated)
	}

	nulls := toSet(opt.NullValues, DefaultNullValues)
	ints := toSet(opt.IntColumns, DefaultIntColumns)

	rd := NewReader(bytes.NewReader(raw))
	rd.Comma = comma

	header, line, err := rd.Read()
	if err == io.EOF {
		return fail(0, ErrEmptyInput)
	}
	if err != nil {
		return fail(line, err)
	}
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := seen[h]; dup {
			return fail(line, fmt.Errorf("%w %q", ErrDuplicateColumn, h))
		}
		seen[h] = struct{}{}
		header[i] = h
	}

	t := &Table{
		Header:      header,
		Comma:       comma,
		Bytes:       len(raw),
		Fingerprint: xxh3.Hash(raw),
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, line, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(line, err)
		}
		if len(fields) != len(header) {
			return fail(line, fmt.Errorf("%w: expected %d, got %d", ErrFieldCount, len(header), len(fields)))
		}

		rec := make(records.Record, len(header))
		for i, val := range fields {
			col := header[i]
			if _, isNull := nulls[val]; isNull {
				rec[col] = nil
				continue
			}
			if _, isInt := ints[col]; isInt {
				s := strings.TrimSpace(val)
				if _, isNull := nulls[s]; isNull {
					rec[col] = nil
					continue
				}
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return fail(line, fmt.Errorf("%w in column %q: %q", ErrBadInteger, col, val))
				}
				rec[col] = n
				continue
			}
			rec[col] = val
		}
		t.Rows = append(t.Rows, records.Row{Line: line, Cells: rec})
	}
	return t, nil
}

func toSet(vals, def []string) map[string]struct{} {
	if vals == nil {
		vals = def
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
