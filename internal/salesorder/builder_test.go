package salesorder

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/geo"
)

func sequentialGUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("GUID-%d", n)
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder() domain.Order {
	return domain.Order{
		ID:         10,
		CustomerID: 7,
		Billing: domain.Address{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Address1:  "1 Main St",
			City:      "Springfield",
			State:     "AK",
			Postcode:  "00000",
			Country:   "NZ",
		},
		Lines: []domain.OrderLine{
			{ProductID: 1, ProductGUID: "P-1", Quantity: 3, UnitPrice: d("19.995"), SubtotalTax: d("7.82")},
			{ProductID: 2, ProductGUID: "P-2", Quantity: 1, UnitPrice: d("5"), SubtotalTax: d("0.65")},
		},
		TotalTax: d("8.47"),
		Total:    d("64.99"),
	}
}

func TestBuild_Header(t *testing.T) {
	b := NewBuilder(geo.Default(), "G.S.T.").WithGUIDs(sequentialGUIDs())
	order := testOrder()
	order.PurchaseOrderNumber = "4411"
	order.DeliveryMethod = "Courier"

	so := b.Build(order, "CUST-GUID")

	assert.Equal(t, "GUID-1", so.Guid)
	assert.Equal(t, StatusPlaced, so.OrderStatus)
	assert.Equal(t, "CUST-GUID", so.Customer.Guid)
	assert.Equal(t, "G.S.T.", so.Tax.TaxCode)
	assert.Equal(t, "PO-4411", so.CustomerRef)
	assert.Equal(t, "Courier", so.DeliveryMethod)
	assert.Equal(t, 56.52, so.SubTotal)
	assert.Equal(t, 8.47, so.TaxTotal)
	assert.Equal(t, 64.99, so.Total)
}

func TestBuild_NoPurchaseOrder(t *testing.T) {
	so := NewBuilder(geo.Default(), "G.S.T.").Build(testOrder(), "C")
	assert.Equal(t, "", so.CustomerRef)
}

func TestBuild_Lines(t *testing.T) {
	b := NewBuilder(geo.Default(), "G.S.T.").WithGUIDs(sequentialGUIDs())
	so := b.Build(testOrder(), "C")

	require.Len(t, so.SalesOrderLines, 2)
	first := so.SalesOrderLines[0]
	assert.Equal(t, 1, first.LineNumber)
	assert.Equal(t, "P-1", first.Product.Guid)
	assert.Equal(t, 3, first.OrderQuantity)
	assert.Equal(t, 19.995, first.UnitPrice)
	assert.Equal(t, 59.99, first.LineTotal)
	assert.Equal(t, 7.82, first.LineTax)
	assert.Equal(t, float64(0), first.DiscountRate)
	assert.Nil(t, first.LineType)
	assert.Nil(t, first.LineTaxCode)

	second := so.SalesOrderLines[1]
	assert.Equal(t, 2, second.LineNumber)
	assert.Equal(t, 5.0, second.LineTotal)

	guids := map[string]bool{so.Guid: true}
	for _, l := range so.SalesOrderLines {
		assert.False(t, guids[l.Guid], "line guid %s reused", l.Guid)
		guids[l.Guid] = true
	}
}

func TestLineTotal_Rounding(t *testing.T) {
	assert.True(t, LineTotal(d("19.995"), 3).Equal(d("59.99")))
	assert.True(t, LineTotal(d("0.125"), 1).Equal(d("0.13")))
	assert.True(t, LineTotal(d("10"), 0).Equal(d("0")))
}

func TestBuild_AddressFallsBackToBilling(t *testing.T) {
	so := NewBuilder(geo.Default(), "G.S.T.").Build(testOrder(), "C")

	assert.Equal(t, "1 Main St", so.DeliveryStreetAddress)
	assert.Equal(t, "Springfield", so.DeliverySuburb)
	assert.Equal(t, "", so.DeliveryCity)
	assert.Equal(t, "00000", so.DeliveryPostCode)
	assert.Equal(t, "New Zealand", so.DeliveryCountry)
	assert.Equal(t, "Auckland", so.DeliveryRegion)
}

func TestBuild_AddressPrefersShippingPerField(t *testing.T) {
	order := testOrder()
	order.Shipping = domain.Address{
		Address1: "9 Dock Rd",
		City:     "",
		State:    "CT",
		Postcode: "8011",
		Country:  "NZ",
	}

	so := NewBuilder(geo.Default(), "G.S.T.").Build(order, "C")

	assert.Equal(t, "9 Dock Rd", so.DeliveryStreetAddress)
	assert.Equal(t, "Springfield", so.DeliverySuburb)
	assert.Equal(t, "", so.DeliveryCity)
	assert.Equal(t, "8011", so.DeliveryPostCode)
	assert.Equal(t, "Canterbury", so.DeliveryRegion)
}

type fakeReference struct{}

func (fakeReference) CountryName(code string) string { return "country:" + code }
func (fakeReference) RegionName(country, region string) string {
	return "region:" + country + "/" + region
}

func TestBuild_UsesReference(t *testing.T) {
	order := testOrder()
	order.Shipping.Country = "AU"
	so := NewBuilder(fakeReference{}, "X").Build(order, "C")

	assert.Equal(t, "country:AU", so.DeliveryCountry)
	assert.Equal(t, "region:AU/AK", so.DeliveryRegion)
}
