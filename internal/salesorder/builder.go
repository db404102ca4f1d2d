// Package salesorder maps a storefront order onto an Unleashed sales order.
package salesorder

import (
	"strings"

	"github.com/shopspring/decimal"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/geo"
	"wc-unleashed-sync/internal/unleashed"
)

// StatusPlaced is the status new sales orders are created with.
const StatusPlaced = "Placed"

// Builder turns orders into sales order payloads. It keeps no state between calls.
type Builder struct {
	ref     geo.Reference
	taxCode string
	newGUID func() string
}

// NewBuilder returns a Builder using ref for address names and taxCode for every order.
func NewBuilder(ref geo.Reference, taxCode string) *Builder {
	return &Builder{ref: ref, taxCode: taxCode, newGUID: unleashed.NewGUID}
}

// WithGUIDs swaps the identifier source; used for deterministic payloads.
func (b *Builder) WithGUIDs(next func() string) *Builder {
	clone := *b
	clone.newGUID = next
	return &clone
}

// TaxCode returns the configured Unleashed tax code.
func (b *Builder) TaxCode() string {
	return b.taxCode
}

// Build maps order for the Unleashed customer customerGUID.
func (b *Builder) Build(order domain.Order, customerGUID string) unleashed.SalesOrder {
	addr := b.deliveryAddress(order)
	return unleashed.SalesOrder{
		Guid:                  b.newGUID(),
		OrderStatus:           StatusPlaced,
		Customer:              unleashed.GuidRef{Guid: customerGUID},
		CustomerRef:           customerRef(order.PurchaseOrderNumber),
		DeliveryMethod:        order.DeliveryMethod,
		DeliveryStreetAddress: addr.street,
		DeliverySuburb:        addr.suburb,
		DeliveryCity:          "",
		DeliveryRegion:        addr.region,
		DeliveryCountry:       addr.country,
		DeliveryPostCode:      addr.postcode,
		Tax:                   unleashed.TaxRef{TaxCode: b.taxCode},
		SubTotal:              order.Total.Sub(order.TotalTax).InexactFloat64(),
		TaxTotal:              order.TotalTax.InexactFloat64(),
		Total:                 order.Total.InexactFloat64(),
		SalesOrderLines:       b.lines(order.Lines),
	}
}

func (b *Builder) lines(items []domain.OrderLine) []unleashed.SalesOrderLine {
	out := make([]unleashed.SalesOrderLine, 0, len(items))
	for i, item := range items {
		out = append(out, unleashed.SalesOrderLine{
			LineNumber:    i + 1,
			Product:       unleashed.GuidRef{Guid: item.ProductGUID},
			OrderQuantity: item.Quantity,
			UnitPrice:     item.UnitPrice.InexactFloat64(),
			DiscountRate:  0,
			LineTotal:     LineTotal(item.UnitPrice, item.Quantity).InexactFloat64(),
			LineTax:       item.SubtotalTax.InexactFloat64(),
			Guid:          b.newGUID(),
		})
	}
	return out
}

// LineTotal is unit price times quantity rounded half away from zero to cents.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

type delivery struct {
	street   string
	suburb   string
	region   string
	country  string
	postcode string
}

// deliveryAddress prefers the shipping block and falls back to billing field by
// field. The storefront city goes to Suburb; City stays empty.
func (b *Builder) deliveryAddress(order domain.Order) delivery {
	ship, bill := order.Shipping, order.Billing
	country := firstNonEmpty(ship.Country, bill.Country)
	state := firstNonEmpty(ship.State, bill.State)

	d := delivery{
		street:   firstNonEmpty(ship.Address1, bill.Address1),
		suburb:   firstNonEmpty(ship.City, bill.City),
		postcode: firstNonEmpty(ship.Postcode, bill.Postcode),
	}
	if b.ref != nil {
		d.country = b.ref.CountryName(country)
		d.region = b.ref.RegionName(country, state)
	}
	return d
}

func customerRef(purchaseOrderNumber string) string {
	if strings.TrimSpace(purchaseOrderNumber) == "" {
		return ""
	}
	return "PO-" + purchaseOrderNumber
}

func firstNonEmpty(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
