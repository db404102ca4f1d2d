package seed

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/migrate"
	orderrepo "wc-unleashed-sync/internal/repository/order"
)

func TestDemoOrderTotals(t *testing.T) {
	o := demoOrder(domain.Customer{ID: 42, Email: "demo.buyer@example.com"})
	sum := o.Lines[0].LineTotal.Add(o.Lines[1].LineTotal)
	assert.True(t, o.Total.Equal(sum))
	assert.True(t, o.Subtotal.Add(o.TotalTax).Equal(o.Total))
	assert.Equal(t, "demo.buyer@example.com", o.Email())
}

func TestApply_Idempotent(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migrate.Apply(ctx, pool, nil))
	_, err = pool.Exec(ctx, `TRUNCATE order_meta, order_lines, orders, products, customers, contacts_data`)
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, pool, nil))
	require.NoError(t, Apply(ctx, pool, nil))

	order, err := orderrepo.NewPostgres(pool, nil).Load(ctx, DemoOrderID)
	require.NoError(t, err)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, "DEMO-1", order.PurchaseOrderNumber)
	assert.Equal(t, "0E8B1F7C-5B1D-4C39-9B44-1A0F4C2B7D01", order.Lines[0].ProductGUID)
}
