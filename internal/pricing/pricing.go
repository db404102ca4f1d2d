// Package pricing computes storefront prices from per-product tier tables.
//
// A tier row either applies to everybody or is restricted to one Unleashed customer
// code. Only base-price rows (minimum quantity of one or less) take part in the
// displayed price; quantity breaks above that are not evaluated here.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountPercentage is the only discount type that discounts off the base price.
// Every other type replaces the price with the tier amount.
const DiscountPercentage = "percentage"

var hundred = decimal.NewFromInt(100)

// Tier is one row of a product's tier table.
type Tier struct {
	Min          int             `json:"min"`
	Max          int             `json:"max,omitempty"`
	DiscountType string          `json:"discountType"`
	Amount       decimal.Decimal `json:"amount"`
	Customer     string          `json:"customer,omitempty"`
}

func (t Tier) isBaseRow() bool {
	return t.Min <= 1
}

func (t Tier) restricted() bool {
	return strings.TrimSpace(t.Customer) != ""
}

// EffectivePrice returns the unit price a customer pays. customerCode is empty for
// anonymous visitors. A customer never pays more than an anonymous visitor: their
// own base row only counts when it undercuts the general price.
func EffectivePrice(customerCode string, regular decimal.Decimal, tiers []Tier) decimal.Decimal {
	general := regular
	for _, t := range tiers {
		if t.isBaseRow() && !t.restricted() {
			general = Calculate(regular, t.DiscountType, t.Amount)
			break
		}
	}
	if customerCode == "" {
		return general
	}

	for _, t := range tiers {
		if t.isBaseRow() && t.Customer == customerCode {
			if own := Calculate(regular, t.DiscountType, t.Amount); own.LessThan(general) {
				return own
			}
			break
		}
	}
	return general
}

// Calculate applies a single tier row to base. A fixed amount is the new price,
// not an amount off.
func Calculate(base decimal.Decimal, discountType string, amount decimal.Decimal) decimal.Decimal {
	if discountType == DiscountPercentage {
		return base.Mul(hundred.Sub(amount)).Div(hundred)
	}
	return amount
}

// Quote is what the storefront shows for a product.
type Quote struct {
	Regular    decimal.Decimal `json:"regularPrice"`
	Price      decimal.Decimal `json:"price"`
	Discounted bool            `json:"discounted"`
}

// NewQuote prices a product for customerCode. Discounted drives the struck-through
// regular price next to the effective one.
func NewQuote(customerCode string, regular decimal.Decimal, tiers []Tier) Quote {
	price := EffectivePrice(customerCode, regular, tiers)
	return Quote{
		Regular:    regular,
		Price:      price,
		Discounted: price.LessThan(regular),
	}
}
