package builtin

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"salesetl/internal/records"
)

func withIDs(ids ...any) []records.Sale {
	out := make([]records.Sale, len(ids))
	for i, id := range ids {
		out[i].Line = i + 2
		if n, ok := id.(int); ok {
			out[i].RowID = sql.NullInt64{Int64: int64(n), Valid: true}
		}
	}
	return out
}

func ids(in []records.Sale) []int64 {
	out := make([]int64, len(in))
	for i, s := range in {
		out[i] = s.RowID.Int64
	}
	return out
}

// TestResolveRowIDs covers the all-or-nothing regeneration policy and the
// duplicate count.
func TestResolveRowIDs(t *testing.T) {
	tests := []struct {
		name      string
		in        []records.Sale
		hadColumn bool
		want      []int64
		dups      int
		regen     bool
	}{
		{name: "unique kept", in: withIDs(10, 3, 7), hadColumn: true, want: []int64{10, 3, 7}},
		{name: "duplicate regenerates all", in: withIDs(5, 5, 9), hadColumn: true, want: []int64{1, 2, 3}, dups: 1, regen: true},
		{name: "missing regenerates all", in: withIDs(5, nil, 9), hadColumn: true, want: []int64{1, 2, 3}, regen: true},
		{name: "missing ids compare equal", in: withIDs(nil, nil, 4, 4), hadColumn: true, want: []int64{1, 2, 3, 4}, dups: 2, regen: true},
		{name: "no column", in: withIDs(nil, nil, nil), want: []int64{1, 2, 3}, regen: true},
		{name: "empty", in: nil, hadColumn: true, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep := ResolveRowIDs(tt.in, tt.hadColumn)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.dups, rep.Duplicates)
			assert.Equal(t, tt.regen, rep.Regenerated)
			for _, s := range got {
				assert.True(t, s.RowID.Valid)
			}
		})
	}
}

// TestResolveRowIDs_NoColumnReportsNoDuplicates verifies an export without
// a Row ID column reports every row as missing and none as duplicated.
func TestResolveRowIDs_NoColumnReportsNoDuplicates(t *testing.T) {
	_, rep := ResolveRowIDs(withIDs(nil, nil, nil), false)
	assert.Equal(t, RowIDReport{Duplicates: 0, Missing: 3, Regenerated: true}, rep)
}

// TestResolveRowIDs_DoesNotMutate verifies the input keeps its source ids.
func TestResolveRowIDs_DoesNotMutate(t *testing.T) {
	in := withIDs(8, 8)
	_, rep := ResolveRowIDs(in, true)
	assert.True(t, rep.Regenerated)
	assert.Equal(t, []int64{8, 8}, ids(in))
}
