package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestVerify_CountsAndOrphans(t *testing.T) {
	conn := &fakeDB{ints: map[string]int64{
		"p.customer_id IS NULL": 2,
		"FROM customers":        5,
		"FROM order_items":      9,
	}}

	r, err := Verify(context.Background(), conn, "test", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), r.Orphans["orders_customers"])
	assert.Equal(t, int64(0), r.Orphans["order_items_orders"])
	assert.False(t, r.Clean())

	require.Len(t, r.Tables, 4)
	assert.Equal(t, TableCount{Table: "customers", Rows: 5, DistinctKeys: 5}, r.Tables[0])
	assert.Equal(t, "order_items", r.Tables[3].Table)
	assert.Equal(t, int64(9), r.Tables[3].Rows)
	// three orphan checks plus two queries per table
	assert.Len(t, conn.queries, 3+2*4)
}

func TestVerify_QueryErrorIsReturned(t *testing.T) {
	_, err := Verify(context.Background(), &fakeDB{queryErr: errBoom}, "test", nil)
	assert.ErrorIs(t, err, errBoom)
}

func TestOrphanCheckQuery(t *testing.T) {
	got := OrphanChecks[0].query()
	assert.Equal(t,
		"SELECT COUNT(*) FROM order_items c LEFT JOIN orders p ON c.order_id = p.order_id WHERE p.order_id IS NULL",
		got)
}
