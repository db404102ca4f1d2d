package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"wc-unleashed-sync/internal/pricing"
)

type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	RegularPrice decimal.Decimal `json:"regularPrice"`
	Price        decimal.Decimal `json:"price"`
	RemoteGUID   string          `json:"remoteGuid,omitempty"`
	Tiers        []pricing.Tier  `json:"tiers,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
