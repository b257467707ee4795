package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"salesetl/internal/records"
)

// SchemaError reports required source columns that are absent from the
// header. It is fatal and surfaces before any cleaning happens.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// Mapping is the result of matching a header against SourceColumns.
type Mapping struct {
	// Names maps a header label to its canonical name.
	Names map[string]string
	// Ignored lists unknown header labels, normalized for display.
	Ignored []string
	// HasRowID reports whether the export carried a Row ID column.
	HasRowID bool
}

// Match resolves header labels to canonical names. Labels are compared
// case-sensitively after trimming and Unicode NFC normalization, so a
// decomposed "é" in an export still matches. Unknown labels are collected
// in Ignored; missing required labels produce a *SchemaError.
func Match(header []string) (Mapping, error) {
	byLabel := make(map[string]Column, len(SourceColumns))
	for _, c := range SourceColumns {
		byLabel[c.Label] = c
	}

	m := Mapping{Names: make(map[string]string, len(header))}
	found := make(map[string]bool, len(SourceColumns))
	for _, h := range header {
		key := norm.NFC.String(strings.TrimSpace(h))
		c, ok := byLabel[key]
		if !ok {
			m.Ignored = append(m.Ignored, NormalizeFieldName(h))
			continue
		}
		m.Names[h] = c.Name
		found[c.Label] = true
	}

	var missing []string
	for _, c := range SourceColumns {
		if !found[c.Label] && !c.Optional {
			missing = append(missing, c.Label)
		}
	}
	if len(missing) > 0 {
		return m, &SchemaError{Missing: missing}
	}
	m.HasRowID = found["Row ID"]
	return m, nil
}

// Rename matches header and returns rows keyed by canonical names together
// with the mapping used. Cells of ignored columns are dropped; the input rows
// are not modified.
func Rename(rows []records.Row, header []string) ([]records.Row, Mapping, error) {
	m, err := Match(header)
	if err != nil {
		return nil, m, err
	}
	out := make([]records.Row, len(rows))
	for i, r := range rows {
		cells := make(records.Record, len(m.Names))
		for label, name := range m.Names {
			if v, ok := r.Cells[label]; ok {
				cells[name] = v
			}
		}
		out[i] = records.Row{Line: r.Line, Cells: cells}
	}
	return out, m, nil
}

// NormalizeFieldName converts arbitrary header text into a lowercase ASCII
// identifier:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; space, dash and dot become a single underscore
//  4. fall back to "col" when nothing is left
func NormalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}
	return out
}
