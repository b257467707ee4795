package storage

import (
	"context"
	"errors"
	"strings"

	"salesetl/internal/db"
)

var errBoom = errors.New("boom")

// fakeTx records every call; CopyInto fails for failTable.
type fakeTx struct {
	execs      []string
	copies     map[string]int
	calls      int
	failTable  string
	failExec   string
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Exec(_ context.Context, q string, _ ...any) error {
	t.execs = append(t.execs, q)
	if t.failExec != "" && strings.Contains(q, t.failExec) {
		return errBoom
	}
	return nil
}

func (t *fakeTx) CopyInto(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	t.calls++
	if table == t.failTable {
		return 0, errBoom
	}
	if t.copies == nil {
		t.copies = map[string]int{}
	}
	t.copies[table] += len(rows)
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeDB hands out tx and answers QueryInt from ints keyed by a query
// suffix.
type fakeDB struct {
	tx       *fakeTx
	beginErr error
	execs    []string
	ints     map[string]int64
	queryErr error
	queries  []string
}

func (d *fakeDB) Exec(_ context.Context, q string, _ ...any) error {
	d.execs = append(d.execs, q)
	return nil
}

func (d *fakeDB) QueryInt(_ context.Context, q string, _ ...any) (int64, error) {
	d.queries = append(d.queries, q)
	if d.queryErr != nil {
		return 0, d.queryErr
	}
	for k, v := range d.ints {
		if strings.HasSuffix(q, k) {
			return v, nil
		}
	}
	return 0, nil
}

func (d *fakeDB) BeginTx(context.Context) (db.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func (d *fakeDB) Close(context.Context) error { return nil }
