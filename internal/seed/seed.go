package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/pricing"
	customerrepo "wc-unleashed-sync/internal/repository/customer"
	orderrepo "wc-unleashed-sync/internal/repository/order"
	productrepo "wc-unleashed-sync/internal/repository/product"
	"wc-unleashed-sync/internal/salesorder"
)

// DemoOrderID is the id of the completed order created by Apply.
const DemoOrderID = 1001

// Apply inserts demo data for manual testing: tiered products, a customer and a
// completed order ready to be registered. It is idempotent via upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	products := productrepo.NewPostgres(pool, logger)
	customers := customerrepo.NewPostgres(pool, logger)
	orders := orderrepo.NewPostgres(pool, logger)

	for _, p := range demoProducts() {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	buyer := domain.Customer{ID: 42, Email: "demo.buyer@example.com", FirstName: "Demo", LastName: "Buyer"}
	if _, err := customers.Upsert(ctx, buyer); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	if err := orders.Save(ctx, demoOrder(buyer)); err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	logger.Info("seed applied", zap.Int("products", len(demoProducts())), zap.Int64("order_id", DemoOrderID))
	return nil
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			ID:           501,
			SKU:          "SKU-DEMO-TSHIRT",
			Name:         "Demo T-Shirt",
			RegularPrice: decimal.RequireFromString("19.99"),
			Price:        decimal.RequireFromString("19.99"),
			RemoteGUID:   "0E8B1F7C-5B1D-4C39-9B44-1A0F4C2B7D01",
			Tiers: []pricing.Tier{
				{Min: 1, DiscountType: pricing.DiscountPercentage, Amount: decimal.NewFromInt(10)},
				{Min: 1, DiscountType: "fixed", Amount: decimal.NewFromInt(12), Customer: "WC-42"},
			},
		},
		{
			ID:           502,
			SKU:          "SKU-DEMO-MUG",
			Name:         "Demo Mug",
			RegularPrice: decimal.RequireFromString("12.99"),
			Price:        decimal.RequireFromString("12.99"),
			RemoteGUID:   "0E8B1F7C-5B1D-4C39-9B44-1A0F4C2B7D02",
		},
	}
}

func demoOrder(buyer domain.Customer) domain.Order {
	shirt := decimal.RequireFromString("17.99")
	mug := decimal.RequireFromString("12.99")
	lines := []domain.OrderLine{
		{ProductID: 501, Quantity: 2, UnitPrice: shirt, LineTotal: salesorder.LineTotal(shirt, 2), SubtotalTax: decimal.RequireFromString("3.27")},
		{ProductID: 502, Quantity: 1, UnitPrice: mug, LineTotal: salesorder.LineTotal(mug, 1), SubtotalTax: decimal.RequireFromString("1.18")},
	}
	total := lines[0].LineTotal.Add(lines[1].LineTotal)
	tax := lines[0].SubtotalTax.Add(lines[1].SubtotalTax)

	billing := domain.Address{
		FirstName: buyer.FirstName,
		LastName:  buyer.LastName,
		Email:     buyer.Email,
		Address1:  "1 Queen St",
		City:      "Brisbane",
		State:     "QLD",
		Postcode:  "4000",
		Country:   "AU",
	}
	return domain.Order{
		ID:                  DemoOrderID,
		CustomerID:          buyer.ID,
		Status:              domain.OrderStatusCompleted,
		PaymentMethod:       domain.PaymentMethodBankTransfer,
		Billing:             billing,
		Lines:               lines,
		Subtotal:            total.Sub(tax),
		TotalTax:            tax,
		Total:               total,
		PurchaseOrderNumber: "DEMO-1",
		DeliveryMethod:      "Courier",
	}
}
