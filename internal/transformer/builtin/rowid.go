package builtin

import "salesetl/internal/records"

// RowIDReport describes what ResolveRowIDs found and did.
type RowIDReport struct {
	// Duplicates counts rows whose row id already appeared earlier in the
	// set. Missing ids compare equal to each other. It is zero when the
	// source had no Row ID column.
	Duplicates int
	// Missing counts rows without a row id.
	Missing int
	// Regenerated is true when every row got a fresh id.
	Regenerated bool
}

// ResolveRowIDs guarantees unique row ids. When the source had no Row ID
// column, or any id is missing or duplicated, every row is renumbered 1..n
// in current order; source ids and generated ids are never mixed. Otherwise
// ids are kept. The input slice is not modified.
func ResolveRowIDs(in []records.Sale, hadColumn bool) ([]records.Sale, RowIDReport) {
	var rep RowIDReport
	seen := make(map[int64]struct{}, len(in))
	for _, s := range in {
		if !hadColumn {
			rep.Missing++
			continue
		}
		if !s.RowID.Valid {
			if rep.Missing > 0 {
				rep.Duplicates++
			}
			rep.Missing++
			continue
		}
		if _, dup := seen[s.RowID.Int64]; dup {
			rep.Duplicates++
			continue
		}
		seen[s.RowID.Int64] = struct{}{}
	}

	out := make([]records.Sale, len(in))
	copy(out, in)
	if hadColumn && rep.Missing == 0 && rep.Duplicates == 0 {
		return out, rep
	}
	rep.Regenerated = true
	for i := range out {
		out[i].RowID.Int64 = int64(i + 1)
		out[i].RowID.Valid = true
	}
	return out, rep
}
