package unleashed

import "errors"

// CustomerRecord is the subset of an Unleashed customer the sync reads.
type CustomerRecord struct {
	Guid         string `json:"Guid"`
	CustomerCode string `json:"CustomerCode"`
	CustomerName string `json:"CustomerName,omitempty"`
	Email        string `json:"Email,omitempty"`
}

// CustomerLookupResponse is the body of GET Customers. Items must be present; an
// empty list means no match.
type CustomerLookupResponse struct {
	Items []CustomerRecord `json:"Items"`
}

func (r *CustomerLookupResponse) validate() error {
	if r.Items == nil {
		return errors.New("missing Items")
	}
	for _, item := range r.Items {
		if item.Guid == "" {
			return errors.New("customer item without Guid")
		}
	}
	return nil
}

// Customer is the body of POST Customers/{guid}.
type Customer struct {
	Guid             string  `json:"Guid"`
	CustomerCode     string  `json:"CustomerCode"`
	CustomerName     string  `json:"CustomerName"`
	Email            string  `json:"Email"`
	Notes            *string `json:"Notes"`
	ContactFirstName string  `json:"ContactFirstName"`
	ContactLastName  string  `json:"ContactLastName"`
}

// GuidRef references another Unleashed resource by Guid.
type GuidRef struct {
	Guid string `json:"Guid"`
}

// TaxRef selects the tax code applied to a sales order.
type TaxRef struct {
	TaxCode string `json:"TaxCode"`
}

// SalesOrder is the body of POST SalesOrders/{guid}.
type SalesOrder struct {
	Guid                  string           `json:"Guid"`
	OrderStatus           string           `json:"OrderStatus"`
	Customer              GuidRef          `json:"Customer"`
	CustomerRef           string           `json:"CustomerRef"`
	DeliveryMethod        string           `json:"DeliveryMethod,omitempty"`
	DeliveryStreetAddress string           `json:"DeliveryStreetAddress"`
	DeliverySuburb        string           `json:"DeliverySuburb"`
	DeliveryCity          string           `json:"DeliveryCity"`
	DeliveryRegion        string           `json:"DeliveryRegion"`
	DeliveryCountry       string           `json:"DeliveryCountry"`
	DeliveryPostCode      string           `json:"DeliveryPostCode"`
	Tax                   TaxRef           `json:"Tax"`
	SubTotal              float64          `json:"SubTotal"`
	TaxTotal              float64          `json:"TaxTotal"`
	Total                 float64          `json:"Total"`
	SalesOrderLines       []SalesOrderLine `json:"SalesOrderLines"`
}

// SalesOrderLine is one line of a sales order.
type SalesOrderLine struct {
	LineNumber    int     `json:"LineNumber"`
	LineType      *string `json:"LineType"`
	Product       GuidRef `json:"Product"`
	OrderQuantity int     `json:"OrderQuantity"`
	UnitPrice     float64 `json:"UnitPrice"`
	DiscountRate  float64 `json:"DiscountRate"`
	LineTotal     float64 `json:"LineTotal"`
	LineTax       float64 `json:"LineTax"`
	LineTaxCode   *string `json:"LineTaxCode"`
	Guid          string  `json:"Guid"`
}

// OrderCreateResponse is the body returned for a created sales order.
type OrderCreateResponse struct {
	Guid        string `json:"Guid,omitempty"`
	OrderNumber string `json:"OrderNumber"`
	OrderStatus string `json:"OrderStatus,omitempty"`
}

func (r *OrderCreateResponse) validate() error {
	if r.OrderNumber == "" {
		return errors.New("missing OrderNumber")
	}
	return nil
}
