package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	contactrepo "wc-unleashed-sync/internal/repository/contact"
	custrepo "wc-unleashed-sync/internal/repository/customer"
	"wc-unleashed-sync/internal/unleashed"
)

// CodePrefix prefixes the storefront customer id to form the Unleashed customer code.
const CodePrefix = "WC-"

// Remote is the part of the Unleashed API the resolver talks to.
type Remote interface {
	FindCustomersByEmail(ctx context.Context, email string) (*unleashed.CustomerLookupResponse, error)
	CreateCustomer(ctx context.Context, customer unleashed.Customer) error
}

// Resolution is the answer to "does Unleashed already know this buyer".
type Resolution struct {
	Exists bool
	GUID   string
	Code   string
}

// Service maps storefront buyers to Unleashed customers.
type Service struct {
	contacts       contactrepo.Repository
	accounts       custrepo.Repository
	remote         Remote
	logger         *zap.Logger
	newGUID        func() string
	remoteFallback bool
}

// Option customizes a Service.
type Option func(*Service)

// WithRemoteFallback makes Resolve query Unleashed by contact email when the
// contact cache has no entry.
func WithRemoteFallback(enabled bool) Option {
	return func(s *Service) { s.remoteFallback = enabled }
}

// WithGUIDs overrides the identifier generator.
func WithGUIDs(fn func() string) Option {
	return func(s *Service) { s.newGUID = fn }
}

// New creates a Service. accounts may be nil when EnsureCustomerCode is not used.
func New(contacts contactrepo.Repository, accounts custrepo.Repository, remote Remote, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		contacts: contacts,
		accounts: accounts,
		remote:   remote,
		logger:   logger.Named("customer"),
		newGUID:  unleashed.NewGUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve reports whether a remote customer exists for email. A cache hit makes no
// remote call.
func (s *Service) Resolve(ctx context.Context, email string) (Resolution, error) {
	c, err := s.contacts.Find(ctx, email)
	switch {
	case err == nil:
		return Resolution{Exists: true, GUID: c.CustomerGUID, Code: c.CustomerCode}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return Resolution{}, fmt.Errorf("read contact cache: %w", err)
	}
	if !s.remoteFallback {
		return Resolution{}, nil
	}

	found, err := s.remote.FindCustomersByEmail(ctx, email)
	if err != nil {
		return Resolution{}, err
	}
	if len(found.Items) == 0 {
		return Resolution{}, nil
	}
	first := found.Items[0]
	return Resolution{Exists: true, GUID: first.Guid, Code: first.CustomerCode}, nil
}

// Create registers the buyer of order as a new Unleashed customer and returns its
// Guid. The contact cache is updated on success; a failed cache write is only
// logged.
func (s *Service) Create(ctx context.Context, order domain.Order) (string, error) {
	guid := s.newGUID()
	code := fmt.Sprintf("%s%d", CodePrefix, order.CustomerID)
	email := order.Email()

	err := s.remote.CreateCustomer(ctx, unleashed.Customer{
		Guid:             guid,
		CustomerCode:     code,
		CustomerName:     order.Billing.FirstName + " " + order.Billing.LastName,
		Email:            email,
		ContactFirstName: order.Billing.FirstName,
		ContactLastName:  order.Billing.LastName,
	})
	if err != nil {
		s.logger.Warn("create customer rejected",
			zap.Int64("order_id", order.ID),
			zap.Int("status", unleashed.StatusCode(err)),
			zap.String("body", unleashed.ResponseBody(err)),
			zap.Error(err),
		)
		return "", err
	}

	if err := s.contacts.Insert(ctx, domain.Contact{Email: email, CustomerCode: code, CustomerGUID: guid}); err != nil {
		s.logger.Error("cache contact",
			zap.String("email", email),
			zap.String("customer_code", code),
			zap.Bool("duplicate", errors.Is(err, domain.ErrAlreadyExists)),
			zap.Error(err),
		)
	}
	s.logger.Info("customer created", zap.Int64("order_id", order.ID), zap.String("customer_code", code))
	return guid, nil
}

// EnsureCustomerCode returns the Unleashed customer code of a storefront account,
// looking it up by email and storing it on the account when it is not known yet.
// An empty code means Unleashed has no customer with that email.
func (s *Service) EnsureCustomerCode(ctx context.Context, customerID int64) (string, error) {
	if s.accounts == nil {
		return "", errors.New("customer accounts store not configured")
	}
	account, err := s.accounts.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if account.RemoteCustomerCode != "" {
		return account.RemoteCustomerCode, nil
	}

	found, err := s.remote.FindCustomersByEmail(ctx, strings.TrimSpace(account.Email))
	if err != nil {
		s.logger.Warn("lookup customer code",
			zap.Int64("customer_id", customerID),
			zap.Int("status", unleashed.StatusCode(err)),
			zap.Error(err),
		)
		return "", err
	}
	if len(found.Items) == 0 || found.Items[0].CustomerCode == "" {
		return "", nil
	}
	code := found.Items[0].CustomerCode
	if err := s.accounts.SetRemoteCustomerCode(ctx, customerID, code); err != nil {
		return "", fmt.Errorf("store customer code: %w", err)
	}
	s.logger.Debug("customer code stored", zap.Int64("customer_id", customerID), zap.String("customer_code", code))
	return code, nil
}
