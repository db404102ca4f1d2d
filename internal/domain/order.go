package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order metadata keys.
const (
	MetaRemoteOrderNumber   = "remote_order_number"
	MetaRegistrationError   = "registration_error_message"
	MetaPurchaseOrderNumber = "purchase_order_number"
	MetaDeliveryMethod      = "delivery_method"
)

const (
	OrderStatusCompleted      = "completed"
	PaymentMethodBankTransfer = "bacs"
)

// Address is a billing or shipping block as captured at checkout.
type Address struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Address1  string `json:"address1,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
}

// Order is the storefront order snapshot. The sync never changes its content, it only
// reads it and writes registration metadata next to it.
type Order struct {
	ID                  int64           `json:"id"`
	CustomerID          int64           `json:"customerId"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod,omitempty"`
	Billing             Address         `json:"billing"`
	Shipping            Address         `json:"shipping"`
	Lines               []OrderLine     `json:"lineItems"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalTax            decimal.Decimal `json:"totalTax"`
	Total               decimal.Decimal `json:"total"`
	PurchaseOrderNumber string          `json:"purchaseOrderNumber,omitempty"`
	DeliveryMethod      string          `json:"deliveryMethod,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// Email returns the buyer email used to match Unleashed customers.
func (o Order) Email() string {
	return o.Billing.Email
}

type OrderLine struct {
	Position    int             `json:"position"`
	ProductID   int64           `json:"productId"`
	ProductGUID string          `json:"productGuid,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	SubtotalTax decimal.Decimal `json:"subtotalTax"`
}
