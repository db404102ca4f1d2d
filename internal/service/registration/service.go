// Package registration pushes completed storefront orders into Unleashed as sales
// orders, creating the buyer as an Unleashed customer first when needed.
//
// The outcome of every attempt is kept in order metadata: the Unleashed order
// number on success, a diagnostic message on failure. A set order number makes
// further attempts no-ops. The check is not transactional, so two concurrent
// attempts for the same order can both submit.
package registration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/salesorder"
	"wc-unleashed-sync/internal/service/customer"
	"wc-unleashed-sync/internal/unleashed"
)

// OutcomeStatus classifies a registration attempt.
type OutcomeStatus string

const (
	// StatusSkipped means the order already carries an Unleashed order number.
	StatusSkipped OutcomeStatus = "skipped"
	// StatusRegistered means the sales order was accepted.
	StatusRegistered OutcomeStatus = "registered"
	// StatusFailed means a remote call failed; the message is stored on the order.
	StatusFailed OutcomeStatus = "failed"
	// StatusIncomplete means no customer Guid was available and nothing was sent.
	StatusIncomplete OutcomeStatus = "incomplete"
)

const (
	msgCustomerLookup = "Unable to check if customer exists in Unleashed."
	msgCustomerCreate = "Unable to create customer in Unleashed."
	msgOrderCreate    = "Unable to create order in Unleashed."
)

// Outcome is the result of one Register call.
type Outcome struct {
	Status      OutcomeStatus `json:"status"`
	OrderNumber string        `json:"order_number,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// Registration is the stored registration state of an order.
type Registration struct {
	OrderID      int64  `json:"order_id"`
	Registered   bool   `json:"registered"`
	OrderNumber  string `json:"order_number,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Orders loads order snapshots and reads or writes their metadata.
type Orders interface {
	Load(ctx context.Context, id int64) (*domain.Order, error)
	GetMeta(ctx context.Context, orderID int64, key string) (string, error)
	SetMeta(ctx context.Context, orderID int64, key, value string) error
	DeleteMeta(ctx context.Context, orderID int64, key string) error
}

// Customers resolves or creates the Unleashed customer of a buyer.
type Customers interface {
	Resolve(ctx context.Context, email string) (customer.Resolution, error)
	Create(ctx context.Context, order domain.Order) (string, error)
}

// SalesOrders submits sales orders to Unleashed.
type SalesOrders interface {
	CreateSalesOrder(ctx context.Context, order unleashed.SalesOrder) (*unleashed.OrderCreateResponse, error)
}

// Service runs the registration workflow.
type Service struct {
	orders    Orders
	customers Customers
	builder   *salesorder.Builder
	remote    SalesOrders
	logger    *zap.Logger
}

func New(orders Orders, customers Customers, builder *salesorder.Builder, remote SalesOrders, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:    orders,
		customers: customers,
		builder:   builder,
		remote:    remote,
		logger:    logger.Named("registration"),
	}
}

// Register pushes order orderID to Unleashed unless it is already registered.
// Remote failures are reported through the Outcome and stored on the order; the
// returned error is reserved for local storage failures.
func (s *Service) Register(ctx context.Context, orderID int64) (Outcome, error) {
	// A caller that disconnects mid-run must not leave the order without an
	// outcome key. Remote calls stay bounded by the client timeout.
	ctx = context.WithoutCancel(ctx)

	order, err := s.orders.Load(ctx, orderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load order %d: %w", orderID, err)
	}
	log := s.logger.With(zap.Int64("order_id", orderID))

	number, err := s.orders.GetMeta(ctx, orderID, domain.MetaRemoteOrderNumber)
	if err != nil {
		return Outcome{}, fmt.Errorf("read order number: %w", err)
	}
	if number != "" {
		log.Debug("already registered", zap.String("order_number", number))
		return Outcome{Status: StatusSkipped, OrderNumber: number}, nil
	}

	email := order.Email()
	resolution, err := s.customers.Resolve(ctx, email)
	if err != nil {
		return s.fail(ctx, log, orderID, msgCustomerLookup, err)
	}

	guid := resolution.GUID
	if !resolution.Exists {
		guid, err = s.customers.Create(ctx, *order)
		if err != nil {
			return s.fail(ctx, log, orderID, msgCustomerCreate, err)
		}
	}
	if guid == "" {
		log.Warn("no customer guid available, sales order not sent", zap.String("email", email))
		return Outcome{Status: StatusIncomplete}, nil
	}

	created, err := s.remote.CreateSalesOrder(ctx, s.builder.Build(*order, guid))
	if err != nil {
		return s.fail(ctx, log, orderID, msgOrderCreate, err)
	}

	if err := s.orders.SetMeta(ctx, orderID, domain.MetaRemoteOrderNumber, created.OrderNumber); err != nil {
		return Outcome{}, fmt.Errorf("store order number: %w", err)
	}
	if err := s.orders.DeleteMeta(ctx, orderID, domain.MetaRegistrationError); err != nil {
		return Outcome{}, fmt.Errorf("clear registration error: %w", err)
	}
	log.Info("order registered", zap.String("order_number", created.OrderNumber), zap.String("customer_guid", guid))
	return Outcome{Status: StatusRegistered, OrderNumber: created.OrderNumber}, nil
}

// Status reports the stored registration state of an order.
func (s *Service) Status(ctx context.Context, orderID int64) (Registration, error) {
	if _, err := s.orders.Load(ctx, orderID); err != nil {
		return Registration{}, err
	}
	number, err := s.orders.GetMeta(ctx, orderID, domain.MetaRemoteOrderNumber)
	if err != nil {
		return Registration{}, err
	}
	message, err := s.orders.GetMeta(ctx, orderID, domain.MetaRegistrationError)
	if err != nil {
		return Registration{}, err
	}
	return Registration{
		OrderID:      orderID,
		Registered:   number != "",
		OrderNumber:  number,
		ErrorMessage: message,
	}, nil
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, orderID int64, prefix string, cause error) (Outcome, error) {
	message := FailureMessage(prefix, cause)
	log.Error("registration failed",
		zap.String("message", message),
		zap.Int("status", unleashed.StatusCode(cause)),
		zap.Error(cause),
	)
	if err := s.orders.DeleteMeta(ctx, orderID, domain.MetaRemoteOrderNumber); err != nil {
		return Outcome{}, fmt.Errorf("clear order number: %w", err)
	}
	if err := s.orders.SetMeta(ctx, orderID, domain.MetaRegistrationError, message); err != nil {
		return Outcome{}, fmt.Errorf("store registration error: %w", err)
	}
	return Outcome{Status: StatusFailed, Message: message}, nil
}

// FailureMessage renders the diagnostic stored on an order after a failed call.
// Status 0 means no response was received.
func FailureMessage(prefix string, cause error) string {
	status := unleashed.StatusCode(cause)
	message := fmt.Sprintf("%s Response code: %d", prefix, status)
	if body := unleashed.ResponseBody(cause); body != "" {
		return message + ". Response: " + body
	}
	if status == 0 && cause != nil {
		return message + ". Error: " + cause.Error()
	}
	return message
}
