// Package app assembles the sync services from configuration.
package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/geo"
	"wc-unleashed-sync/internal/httpserver"
	contactrepo "wc-unleashed-sync/internal/repository/contact"
	customerrepo "wc-unleashed-sync/internal/repository/customer"
	orderrepo "wc-unleashed-sync/internal/repository/order"
	productrepo "wc-unleashed-sync/internal/repository/product"
	"wc-unleashed-sync/internal/salesorder"
	"wc-unleashed-sync/internal/service/checkout"
	customersvc "wc-unleashed-sync/internal/service/customer"
	productsvc "wc-unleashed-sync/internal/service/product"
	"wc-unleashed-sync/internal/service/registration"
	"wc-unleashed-sync/internal/unleashed"
)

// App holds the wired services.
type App struct {
	Orders       orderrepo.Repository
	Accounts     customerrepo.Repository
	Customers    *customersvc.Service
	Registration *registration.Service
	Checkout     *checkout.Service
	Products     *productsvc.Service
}

// New wires repositories on pool, the Unleashed client and the services on top.
// cfg must have passed Validate.
func New(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := unleashed.New(cfg.UnleashedClient(), logger)
	if err != nil {
		return nil, fmt.Errorf("unleashed client: %w", err)
	}
	ref, err := geo.Load(cfg.RegionsFile)
	if err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}

	orders := orderrepo.NewPostgres(pool, logger)
	accounts := customerrepo.NewPostgres(pool, logger)
	contacts := contactrepo.NewPostgres(pool)

	customers := customersvc.New(contacts, accounts, client, logger,
		customersvc.WithRemoteFallback(cfg.Unleashed.RemoteLookup),
	)
	builder := salesorder.NewBuilder(ref, cfg.Unleashed.TaxCode)
	fields, err := checkout.New(orders, cfg.Checkout.DeliveryMethods, logger)
	if err != nil {
		return nil, fmt.Errorf("checkout fields: %w", err)
	}

	return &App{
		Orders:       orders,
		Accounts:     accounts,
		Customers:    customers,
		Registration: registration.New(orders, customers, builder, client, logger),
		Checkout:     fields,
		Products:     productsvc.New(productrepo.NewPostgres(pool, logger), customers, logger),
	}, nil
}

// HTTPDeps exposes the services to the HTTP layer.
func (a *App) HTTPDeps(cfg *config.Config) httpserver.Deps {
	return httpserver.Deps{
		Orders:           a.Orders,
		Customers:        a.Accounts,
		Registration:     a.Registration,
		Checkout:         a.Checkout,
		Products:         a.Products,
		CustomerCodes:    a.Customers,
		WebhookSecret:    cfg.Webhook.Secret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}
}
