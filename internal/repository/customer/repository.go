package customer

import (
	"context"

	"wc-unleashed-sync/internal/domain"
)

// Repository persists storefront customer accounts.
type Repository interface {
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	SetRemoteCustomerCode(ctx context.Context, id int64, code string) error
}
