// Package rejectlog writes rows dropped by the business rules to a CSV file
// so they can be inspected after a run.
package rejectlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"salesetl/internal/transformer/builtin"
)

// Header is the first row of every rejects file.
var Header = []string{"rule", "line_number", "order_id", "reason"}

// Log appends rejected rows to a CSV file and counts them per rule.
type Log struct {
	rules map[string]int
	f     *os.File
	w     *csv.Writer
	err   error
}

// New creates path (and any missing parent directories), truncating an
// existing file, and writes the header row.
func New(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("rejectlog: create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("rejectlog: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rejectlog: write header: %w", err)
	}
	return &Log{rules: make(map[string]int), f: f, w: w}, nil
}

// Add records one rejected row. Its signature matches builtin.Rules.Reject.
// The first write error is kept and reported by Close.
func (l *Log) Add(r builtin.RejectedRow) {
	l.rules[r.Rule]++
	if l.err != nil {
		return
	}
	l.err = l.w.Write([]string{r.Rule, strconv.Itoa(r.Line), r.OrderID, r.Reason})
}

// Counts returns the number of rows added per rule.
func (l *Log) Counts() map[string]int {
	out := make(map[string]int, len(l.rules))
	for k, v := range l.rules {
		out[k] = v
	}
	return out
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	err := l.err
	if err == nil {
		err = l.w.Error()
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
