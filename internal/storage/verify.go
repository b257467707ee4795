package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"salesetl/internal/db"
	"salesetl/internal/metrics"
	"salesetl/internal/schema"
)

// OrphanCheck is one referential check: rows of Child whose Column has no
// match in Parent.
type OrphanCheck struct {
	Name   string
	Child  string
	Column string
	Parent string
}

// OrphanChecks are the referential checks run by Verify.
var OrphanChecks = []OrphanCheck{
	{Name: "order_items_orders", Child: schema.OrderItemsTable.Name, Column: schema.OrderID, Parent: schema.OrdersTable.Name},
	{Name: "order_items_products", Child: schema.OrderItemsTable.Name, Column: schema.ProductID, Parent: schema.ProductsTable.Name},
	{Name: "orders_customers", Child: schema.OrdersTable.Name, Column: schema.CustomerID, Parent: schema.CustomersTable.Name},
}

func (c OrphanCheck) query() string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s c LEFT JOIN %s p ON c.%s = p.%s WHERE p.%s IS NULL",
		c.Child, c.Parent, c.Column, c.Column, c.Column,
	)
}

// TableCount holds the row total and distinct key count of one table.
type TableCount struct {
	Table        string
	Rows         int64
	DistinctKeys int64
}

// Report is the integrity summary of the store.
type Report struct {
	// Orphans maps an OrphanCheck name to its violation count.
	Orphans map[string]int64
	Tables  []TableCount
}

// Clean reports whether every orphan count is zero.
func (r Report) Clean() bool {
	for _, n := range r.Orphans {
		if n != 0 {
			return false
		}
	}
	return true
}

// Verify counts orphaned rows and per-table totals in conn. Violations are
// reported, never returned as errors; only query failures are.
func Verify(ctx context.Context, conn db.DB, job string, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := Report{Orphans: make(map[string]int64, len(OrphanChecks))}
	for _, c := range OrphanChecks {
		n, err := conn.QueryInt(ctx, c.query())
		if err != nil {
			return r, fmt.Errorf("verify %s: %w", c.Name, err)
		}
		r.Orphans[c.Name] = n
		metrics.RecordOrphans(job, c.Name, n)
		if n > 0 {
			log.Warn("verify: orphaned rows", zap.String("check", c.Name), zap.Int64("count", n))
		}
	}
	for _, t := range schema.Tables {
		tc := TableCount{Table: t.Name}
		var err error
		if tc.Rows, err = conn.QueryInt(ctx, "SELECT COUNT(*) FROM "+t.Name); err != nil {
			return r, fmt.Errorf("verify count %s: %w", t.Name, err)
		}
		if tc.DistinctKeys, err = conn.QueryInt(ctx, fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", t.Key, t.Name)); err != nil {
			return r, fmt.Errorf("verify distinct %s: %w", t.Name, err)
		}
		r.Tables = append(r.Tables, tc)
	}
	log.Info("verify: done", zap.Bool("clean", r.Clean()))
	return r, nil
}
