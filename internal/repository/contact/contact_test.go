package contact

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/migrate"
)

func TestPostgres_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)

	if _, err := repo.Find(ctx, "buyer@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Insert(ctx, domain.Contact{Email: "buyer@example.com", CustomerCode: "WC-42", CustomerGUID: "G-42"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := repo.Find(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.CustomerCode != "WC-42" || got.CustomerGUID != "G-42" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected contact %+v", got)
	}

	err = repo.Insert(ctx, domain.Contact{Email: "buyer@example.com", CustomerCode: "WC-43", CustomerGUID: "G-43"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
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
