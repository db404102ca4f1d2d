package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/migrate"
	"wc-unleashed-sync/internal/pricing"
)

func TestPostgres_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		ID:           101,
		SKU:          "WIDGET-1",
		Name:         "Widget",
		RegularPrice: decimal.RequireFromString("100"),
		Price:        decimal.RequireFromString("95.50"),
		RemoteGUID:   "P-GUID-1",
		Tiers: []pricing.Tier{
			{Min: 1, Max: 0, DiscountType: pricing.DiscountPercentage, Amount: decimal.NewFromInt(10)},
			{Min: 1, Max: 0, DiscountType: "fixed", Amount: decimal.NewFromInt(40), Customer: "C1"},
		},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, err := repo.GetByID(ctx, 101)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SKU != "WIDGET-1" || got.RemoteGUID != "P-GUID-1" {
		t.Fatalf("unexpected product %+v", got)
	}
	if !got.Price.Equal(decimal.RequireFromString("95.5")) || !got.RegularPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected prices %s / %s", got.RegularPrice, got.Price)
	}
	if len(got.Tiers) != 2 || got.Tiers[1].Customer != "C1" || !got.Tiers[1].Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected tiers %+v", got.Tiers)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_UpsertUpdatesAndLists(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	for _, p := range []domain.Product{
		{ID: 1, SKU: "A", Name: "Alpha", RegularPrice: decimal.NewFromInt(10), Price: decimal.NewFromInt(10)},
		{ID: 2, SKU: "B", Name: "Beta", RegularPrice: decimal.NewFromInt(20), Price: decimal.NewFromInt(20)},
	} {
		if _, err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("Upsert %s: %v", p.SKU, err)
		}
	}

	if _, err := repo.Upsert(ctx, domain.Product{
		ID: 2, SKU: "B2", Name: "Beta v2", RegularPrice: decimal.NewFromInt(25), Price: decimal.NewFromInt(22), RemoteGUID: "G2",
	}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}
	updated := list[1]
	if updated.ID != 2 || updated.SKU != "B2" || updated.RemoteGUID != "G2" || !updated.Price.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("unexpected updated product %+v", updated)
	}
	if len(updated.Tiers) != 0 {
		t.Fatalf("expected no tiers, got %+v", updated.Tiers)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool, nil); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_meta, order_lines, orders, products, customers, contacts_data`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
