package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/app"
	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/db"
	"wc-unleashed-sync/internal/logger"
	productsvc "wc-unleashed-sync/internal/service/product"
	"wc-unleashed-sync/internal/service/registration"
)

type backend interface {
	Register(ctx context.Context, orderID int64) (registration.Outcome, error)
	Status(ctx context.Context, orderID int64) (registration.Registration, error)
	Quote(ctx context.Context, productID, customerID int64) (productsvc.Quote, error)
	Close()
}

type connectFunc func(ctx context.Context) (backend, error)

func newRootCommand(connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "syncctl",
		Short:         "Operate the WooCommerce to Unleashed order sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		registerCommand(connect),
		statusCommand(connect),
		priceCommand(connect),
	)
	return root
}

func registerCommand(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "register <order-id>",
		Short: "Register a stored order as an Unleashed sales order",
		Long: `Register a stored order in Unleashed.

Orders that already carry an Unleashed order number are skipped.
A failed attempt stores the error message on the order and exits non-zero.

Examples:
  syncctl register 1001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b backend) error {
				outcome, err := b.Register(ctx, orderID)
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), outcome); err != nil {
					return err
				}
				if outcome.Status == registration.StatusFailed {
					return fmt.Errorf("order %d not registered", orderID)
				}
				return nil
			})
		},
	}
}

func statusCommand(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id>",
		Short: "Show the Unleashed registration state of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b backend) error {
				reg, err := b.Status(ctx, orderID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), reg)
			})
		},
	}
}

func priceCommand(connect connectFunc) *cobra.Command {
	var customerID int64

	cmd := &cobra.Command{
		Use:   "price <product-id>",
		Short: "Quote a product price for a customer",
		Long: `Quote the effective price of a product.

Without --customer-id the guest price is shown.

Examples:
  syncctl price 501
  syncctl price 501 --customer-id=42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b backend) error {
				quote, err := b.Quote(ctx, productID, customerID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), quote)
			})
		},
	}

	cmd.Flags().Int64Var(&customerID, "customer-id", 0, "Storefront customer id (0 for guest)")

	return cmd
}

func withBackend(cmd *cobra.Command, connect connectFunc, fn func(ctx context.Context, b backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := connect(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type appBackend struct {
	app   *app.App
	close func()
}

func (b *appBackend) Register(ctx context.Context, orderID int64) (registration.Outcome, error) {
	return b.app.Registration.Register(ctx, orderID)
}

func (b *appBackend) Status(ctx context.Context, orderID int64) (registration.Registration, error) {
	return b.app.Registration.Status(ctx, orderID)
}

func (b *appBackend) Quote(ctx context.Context, productID, customerID int64) (productsvc.Quote, error) {
	return b.app.Products.Quote(ctx, productID, customerID)
}

func (b *appBackend) Close() { b.close() }

func connectBackend(ctx context.Context) (backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zl = zl.Named("syncctl")

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBPool)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	a, err := app.New(cfg, pool, zl)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &appBackend{
		app: a,
		close: func() {
			pool.Close()
			if err := zl.Sync(); err != nil {
				zl.Debug("sync logger", zap.Error(err))
			}
		},
	}, nil
}
