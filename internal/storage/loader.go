package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/db"
	"salesetl/internal/metrics"
	"salesetl/internal/schema"
	"salesetl/internal/transformer/builtin"
)

// DefaultBatchSize is the number of rows handed to one CopyInto call.
const DefaultBatchSize = 1000

// LoadOptions configures Load.
type LoadOptions struct {
	// Reset deletes every existing row (children first) before inserting.
	// Without it the load appends and fails on key collisions.
	Reset bool
	// BatchSize caps rows per CopyInto call. Zero means DefaultBatchSize.
	BatchSize int
	// Job labels metrics.
	Job string
}

// LoadResult summarizes a committed load.
type LoadResult struct {
	// Inserted is the number of rows inserted per table.
	Inserted map[string]int64
	Batches  int
	Reset    bool
	Elapsed  time.Duration
}

// CopyFn abstracts a backend's bulk insert capability. Implementations
// insert the provided rows (aligned to columns) and return the number of
// rows inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Load writes e into conn inside a single transaction: an optional reset
// (children before parents) followed by inserts of customers, products,
// orders and order items, in that order. Any failure rolls the transaction
// back and is returned as *LoadError.
func Load(ctx context.Context, conn db.DB, e builtin.Entities, opt LoadOptions, log *zap.Logger) (LoadResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	batchSize := opt.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	start := time.Now()
	res := LoadResult{Inserted: make(map[string]int64, len(schema.Tables)), Reset: opt.Reset}

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return res, &LoadError{Phase: PhaseBegin, Err: err}
	}
	fail := func(le *LoadError) (LoadResult, error) {
		if rerr := tx.Rollback(ctx); rerr != nil {
			log.Warn("loader: rollback failed", zap.Error(rerr))
		}
		log.Error("loader: rolled back", zap.String("phase", le.Phase), zap.String("table", le.Table), zap.Error(le.Err))
		return res, le
	}

	if opt.Reset {
		for i := len(schema.Tables) - 1; i >= 0; i-- {
			t := schema.Tables[i]
			if err := tx.Exec(ctx, "DELETE FROM "+t.Name); err != nil {
				return fail(&LoadError{Phase: PhaseReset, Table: t.Name, Err: err})
			}
		}
		log.Info("loader: existing rows deleted")
	}

	for _, t := range schema.Tables {
		rows := entityRows(e, t.Name)
		copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return tx.CopyInto(ctx, t.Name, columns, rows)
		}
		n, batches, err := LoadBatches(ctx, log.With(zap.String("table", t.Name)), t.Columns, rows, batchSize, copyFn)
		res.Inserted[t.Name] = n
		res.Batches += batches
		metrics.RecordInserted(opt.Job, t.Name, n)
		metrics.RecordBatches(opt.Job, t.Name, int64(batches))
		if err != nil {
			return fail(&LoadError{Phase: PhaseInsert, Table: t.Name, Err: err})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fail(&LoadError{Phase: PhaseCommit, Err: err})
	}
	res.Elapsed = time.Since(start)
	log.Info("loader: committed",
		zap.Int64(schema.CustomersTable.Name, res.Inserted[schema.CustomersTable.Name]),
		zap.Int64(schema.ProductsTable.Name, res.Inserted[schema.ProductsTable.Name]),
		zap.Int64(schema.OrdersTable.Name, res.Inserted[schema.OrdersTable.Name]),
		zap.Int64(schema.OrderItemsTable.Name, res.Inserted[schema.OrderItemsTable.Name]),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// LoadBatches splits rows into batches of batchSize and calls copyFn for
// each. It returns the total reported by copyFn, the number of successful
// batches and the first error encountered. Progress is logged on each
// successful flush.
func LoadBatches(
	ctx context.Context,
	log *zap.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, int, error) {
	if batchSize <= 0 {
		return 0, 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int
		start       = time.Now()
		lastFlushTS = start
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, batches, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Warn("loader: copy failed", zap.Int64("after", n), zap.Int64("total", total), zap.Error(err))
			return total, batches, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Debug("loader: batch",
			zap.Int("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
			zap.Duration("since_last", sinceLast.Truncate(time.Millisecond)),
		)
		lastFlushTS = now
	}
	return total, batches, nil
}

// entityRows returns the rows for table in its column order.
func entityRows(e builtin.Entities, table string) [][]any {
	var out [][]any
	switch table {
	case schema.CustomersTable.Name:
		out = make([][]any, len(e.Customers))
		for i, c := range e.Customers {
			out[i] = c.Values()
		}
	case schema.ProductsTable.Name:
		out = make([][]any, len(e.Products))
		for i, p := range e.Products {
			out[i] = p.Values()
		}
	case schema.OrdersTable.Name:
		out = make([][]any, len(e.Orders))
		for i, o := range e.Orders {
			out[i] = o.Values()
		}
	case schema.OrderItemsTable.Name:
		out = make([][]any, len(e.OrderItems))
		for i, it := range e.OrderItems {
			out[i] = it.Values()
		}
	}
	return out
}
