package order

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
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

// Save upserts the order header and replaces its lines. Checkout fields are stored
// as metadata when present.
func (r *postgresRepo) Save(ctx context.Context, o domain.Order) error {
	billing, err := json.Marshal(o.Billing)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsertOrder = `
INSERT INTO orders (id, customer_id, status, payment_method, billing, shipping, subtotal, total_tax, total)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric)
ON CONFLICT (id) DO UPDATE SET
    customer_id = EXCLUDED.customer_id,
    status = EXCLUDED.status,
    payment_method = EXCLUDED.payment_method,
    billing = EXCLUDED.billing,
    shipping = EXCLUDED.shipping,
    subtotal = EXCLUDED.subtotal,
    total_tax = EXCLUDED.total_tax,
    total = EXCLUDED.total,
    updated_at = now()
`
	if _, err := tx.Exec(ctx, upsertOrder,
		o.ID,
		o.CustomerID,
		o.Status,
		o.PaymentMethod,
		billing,
		shipping,
		o.Subtotal.String(),
		o.TotalTax.String(),
		o.Total.String(),
	); err != nil {
		r.logger.Error("upsert order", zap.Int64("order_id", o.ID), zap.Error(err))
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, o.ID); err != nil {
		return err
	}
	const insertLine = `
INSERT INTO order_lines (order_id, position, product_id, quantity, unit_price, line_total, subtotal_tax)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric)
`
	for i, line := range o.Lines {
		if _, err := tx.Exec(ctx, insertLine,
			o.ID,
			i+1,
			line.ProductID,
			line.Quantity,
			line.UnitPrice.String(),
			line.LineTotal.String(),
			line.SubtotalTax.String(),
		); err != nil {
			r.logger.Error("insert order line", zap.Int64("order_id", o.ID), zap.Int("position", i+1), zap.Error(err))
			return err
		}
	}

	meta := map[string]string{
		domain.MetaPurchaseOrderNumber: o.PurchaseOrderNumber,
		domain.MetaDeliveryMethod:      o.DeliveryMethod,
	}
	for key, value := range meta {
		if value == "" {
			continue
		}
		if _, err := tx.Exec(ctx, upsertMeta, o.ID, key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Debug("order saved", zap.Int64("order_id", o.ID), zap.Int("lines", len(o.Lines)))
	return nil
}

func (r *postgresRepo) Load(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `
SELECT o.id, o.customer_id, o.status, o.payment_method, o.billing, o.shipping,
       o.subtotal::text, o.total_tax::text, o.total::text, o.created_at,
       COALESCE(po.meta_value, ''), COALESCE(dm.meta_value, '')
FROM orders o
LEFT JOIN order_meta po ON po.order_id = o.id AND po.meta_key = $2
LEFT JOIN order_meta dm ON dm.order_id = o.id AND dm.meta_key = $3
WHERE o.id = $1
`
	var (
		o                         domain.Order
		billing, shipping         []byte
		subtotal, totalTax, total string
	)
	err := r.pool.QueryRow(ctx, q, id, domain.MetaPurchaseOrderNumber, domain.MetaDeliveryMethod).Scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.PaymentMethod,
		&billing,
		&shipping,
		&subtotal,
		&totalTax,
		&total,
		&o.CreatedAt,
		&o.PurchaseOrderNumber,
		&o.DeliveryMethod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("load order", zap.Int64("order_id", id), zap.Error(err))
		return nil, err
	}
	if err := json.Unmarshal(billing, &o.Billing); err != nil {
		return nil, fmt.Errorf("decode billing: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return nil, fmt.Errorf("decode shipping: %w", err)
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if o.TotalTax, err = decimal.NewFromString(totalTax); err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	const q = `
SELECT l.position, l.product_id, COALESCE(p.remote_guid, ''), l.quantity,
       l.unit_price::text, l.line_total::text, l.subtotal_tax::text
FROM order_lines l
LEFT JOIN products p ON p.id = l.product_id
WHERE l.order_id = $1
ORDER BY l.position
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			line                          domain.OrderLine
			unitPrice, lineTotal, lineTax string
		)
		if err := rows.Scan(&line.Position, &line.ProductID, &line.ProductGUID, &line.Quantity, &unitPrice, &lineTotal, &lineTax); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		if line.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, err
		}
		if line.SubtotalTax, err = decimal.NewFromString(lineTax); err != nil {
			return nil, err
		}
		if line.ProductGUID == "" {
			r.logger.Warn("product has no remote guid", zap.Int64("order_id", orderID), zap.Int64("product_id", line.ProductID))
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const upsertMeta = `
INSERT INTO order_meta (order_id, meta_key, meta_value)
VALUES ($1, $2, $3)
ON CONFLICT (order_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = now()
`

func (r *postgresRepo) GetMeta(ctx context.Context, orderID int64, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT meta_value FROM order_meta WHERE order_id = $1 AND meta_key = $2`, orderID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *postgresRepo) SetMeta(ctx context.Context, orderID int64, key, value string) error {
	if _, err := r.pool.Exec(ctx, upsertMeta, orderID, key, value); err != nil {
		r.logger.Error("set meta", zap.Int64("order_id", orderID), zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) DeleteMeta(ctx context.Context, orderID int64, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM order_meta WHERE order_id = $1 AND meta_key = $2`, orderID, key)
	return err
}
