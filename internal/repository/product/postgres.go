package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/pricing"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const selectColumns = `id, sku, name, regular_price::text, price::text, remote_guid, price_tiers, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.Int64("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	tiers := product.Tiers
	if tiers == nil {
		tiers = []pricing.Tier{}
	}
	tiersJSON, err := json.Marshal(tiers)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO products (id, sku, name, regular_price, price, remote_guid, price_tiers)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    regular_price = EXCLUDED.regular_price,
    price = EXCLUDED.price,
    remote_guid = EXCLUDED.remote_guid,
    price_tiers = EXCLUDED.price_tiers
RETURNING created_at
`
	res := product
	err = r.pool.QueryRow(ctx, q,
		product.ID,
		product.SKU,
		product.Name,
		product.RegularPrice.String(),
		product.Price.String(),
		product.RemoteGUID,
		tiersJSON,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert", zap.Int64("id", product.ID), zap.String("sku", product.SKU), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted", zap.Int64("id", res.ID), zap.String("sku", res.SKU), zap.Int("tiers", len(res.Tiers)))
	return &res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p              domain.Product
		regular, price string
		tiersJSON      []byte
	)
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &regular, &price, &p.RemoteGUID, &tiersJSON, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.RegularPrice, err = decimal.NewFromString(regular); err != nil {
		return nil, fmt.Errorf("decode regular price id=%d: %w", p.ID, err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode price id=%d: %w", p.ID, err)
	}
	if len(tiersJSON) > 0 {
		if err := json.Unmarshal(tiersJSON, &p.Tiers); err != nil {
			return nil, fmt.Errorf("decode tiers id=%d: %w", p.ID, err)
		}
	}
	return &p, nil
}
