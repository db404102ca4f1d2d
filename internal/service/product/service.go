package product

import (
	"context"

	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/pricing"
	productrepo "wc-unleashed-sync/internal/repository/product"
)

// CustomerCodes resolves the Unleashed customer code of a storefront account.
type CustomerCodes interface {
	EnsureCustomerCode(ctx context.Context, customerID int64) (string, error)
}

// Quote is a priced product for one shopper.
type Quote struct {
	ProductID    int64  `json:"productId"`
	SKU          string `json:"sku"`
	CustomerCode string `json:"customerCode,omitempty"`
	pricing.Quote
}

type Service struct {
	repo   productrepo.Repository
	codes  CustomerCodes
	logger *zap.Logger
}

func New(repo productrepo.Repository, codes CustomerCodes, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, codes: codes, logger: logger.Named("product")}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Quote prices productID for customerID (0 for a guest). When the customer code
// cannot be resolved the guest price is quoted.
func (s *Service) Quote(ctx context.Context, productID, customerID int64) (Quote, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return Quote{}, err
	}

	var code string
	if customerID != 0 && s.codes != nil {
		code, err = s.codes.EnsureCustomerCode(ctx, customerID)
		if err != nil {
			s.logger.Warn("customer code unavailable, quoting guest price",
				zap.Int64("customer_id", customerID),
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
			code = ""
		}
	}

	return Quote{
		ProductID:    p.ID,
		SKU:          p.SKU,
		CustomerCode: code,
		Quote:        pricing.NewQuote(code, p.RegularPrice, p.Tiers),
	}, nil
}
