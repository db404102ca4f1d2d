package httpserver

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/service/checkout"
)

// wooOrder is the subset of the WooCommerce REST order resource sent by order
// webhooks.
type wooOrder struct {
	ID            int64           `json:"id"`
	Status        string          `json:"status"`
	CustomerID    int64           `json:"customer_id"`
	PaymentMethod string          `json:"payment_method"`
	Billing       wooAddress      `json:"billing"`
	Shipping      wooAddress      `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	LineItems     []wooLineItem   `json:"line_items"`
	MetaData      []wooMeta       `json:"meta_data"`
}

type wooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

type wooLineItem struct {
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax"`
}

type wooMeta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (o wooOrder) meta(key string) string {
	for _, m := range o.MetaData {
		if m.Key != key {
			continue
		}
		if m.Value == nil {
			return ""
		}
		return fmt.Sprint(m.Value)
	}
	return ""
}

func (o wooOrder) validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("order id is required")
	}
	if strings.TrimSpace(o.Status) == "" {
		return fmt.Errorf("order status is required")
	}
	for i, item := range o.LineItems {
		if item.Quantity <= 0 {
			return fmt.Errorf("line item %d: quantity must be positive", i+1)
		}
	}
	return nil
}

// checkoutFields extracts the checkout inputs stored in order metadata.
func (o wooOrder) checkoutFields() checkout.Fields {
	return checkout.Fields{
		PaymentMethod:       o.PaymentMethod,
		PurchaseOrderNumber: o.meta(domain.MetaPurchaseOrderNumber),
		DeliveryMethod:      o.meta(domain.MetaDeliveryMethod),
	}
}

func (o wooOrder) toDomain() domain.Order {
	order := domain.Order{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Status:        strings.ToLower(strings.TrimSpace(o.Status)),
		PaymentMethod: o.PaymentMethod,
		Billing:       o.Billing.toDomain(),
		Shipping:      o.Shipping.toDomain(),
		TotalTax:      o.TotalTax,
		Total:         o.Total,
		Subtotal:      o.Total.Sub(o.TotalTax),
		Lines:         make([]domain.OrderLine, 0, len(o.LineItems)),
	}
	for i, item := range o.LineItems {
		unit := item.Price
		if unit.IsZero() && item.Quantity > 0 {
			unit = item.Subtotal.Div(decimal.NewFromInt(int64(item.Quantity)))
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			Position:    i + 1,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			LineTotal:   item.Subtotal,
			SubtotalTax: item.SubtotalTax,
		})
	}
	return order
}

func (a wooAddress) toDomain() domain.Address {
	return domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     strings.TrimSpace(a.Email),
		Address1:  a.Address1,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
	}
}
