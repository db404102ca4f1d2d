package order

import (
	"context"

	"wc-unleashed-sync/internal/domain"
)

// Repository stores order snapshots and their key/value metadata.
type Repository interface {
	Save(ctx context.Context, order domain.Order) error
	Load(ctx context.Context, id int64) (*domain.Order, error)
	// GetMeta returns "" when the key is not set.
	GetMeta(ctx context.Context, orderID int64, key string) (string, error)
	SetMeta(ctx context.Context, orderID int64, key, value string) error
	DeleteMeta(ctx context.Context, orderID int64, key string) error
}
