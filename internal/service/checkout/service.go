// Package checkout handles the extra checkout fields the sync needs: the
// purchase-order number asked for on bank-transfer payments and the delivery method.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
)

const (
	NoticePurchaseOrderNumber = `Please enter the "Purchase Order Number".`
	NoticeDeliveryMethod      = `Please select a "Delivery Method".`
)

// Fields are the checkout inputs stored on the order.
type Fields struct {
	PaymentMethod       string `json:"payment_method"`
	PurchaseOrderNumber string `json:"purchase_order_number" validate:"required_if=PaymentMethod bacs"`
	DeliveryMethod      string `json:"delivery_method" validate:"delivery_method"`
}

// MetaWriter stores order metadata.
type MetaWriter interface {
	SetMeta(ctx context.Context, orderID int64, key, value string) error
}

type Service struct {
	orders   MetaWriter
	methods  []string
	validate *validator.Validate
	logger   *zap.Logger
}

const deliveryMethodTag = "delivery_method"

// New creates a Service. With no delivery methods configured the delivery field is
// optional and unrestricted.
func New(orders MetaWriter, deliveryMethods []string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		orders:  orders,
		methods: slices.Clone(deliveryMethods),
		logger:  logger.Named("checkout"),
	}
	v, err := newValidator(deliveryMethodTag, s.validDeliveryMethod)
	if err != nil {
		return nil, err
	}
	s.validate = v
	return s, nil
}

func newValidator(tag string, fn validator.Func) (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(tag, fn); err != nil {
		return nil, fmt.Errorf("register %q rule: %w", tag, err)
	}
	return v, nil
}

// DeliveryMethods lists the selectable delivery methods.
func (s *Service) DeliveryMethods() []string {
	return slices.Clone(s.methods)
}

func (s *Service) validDeliveryMethod(fl validator.FieldLevel) bool {
	if len(s.methods) == 0 {
		return true
	}
	return slices.Contains(s.methods, fl.Field().String())
}

// Validate returns the checkout notices for f. An empty result means f is valid.
func (s *Service) Validate(f Fields) []string {
	f = Sanitize(f)
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		s.logger.Error("validate checkout fields", zap.Error(err))
		return []string{err.Error()}
	}

	notices := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.StructField() {
		case "PurchaseOrderNumber":
			notices = append(notices, NoticePurchaseOrderNumber)
		case "DeliveryMethod":
			if f.DeliveryMethod == "" {
				notices = append(notices, NoticeDeliveryMethod)
			} else {
				notices = append(notices, fmt.Sprintf("%q is not an available delivery method.", f.DeliveryMethod))
			}
		}
	}
	return notices
}

// Apply stores the sanitized fields on the order. The purchase-order number is kept
// only for bank-transfer payments.
func (s *Service) Apply(ctx context.Context, orderID int64, f Fields) error {
	f = Sanitize(f)
	if f.PaymentMethod == domain.PaymentMethodBankTransfer && f.PurchaseOrderNumber != "" {
		if err := s.orders.SetMeta(ctx, orderID, domain.MetaPurchaseOrderNumber, f.PurchaseOrderNumber); err != nil {
			return fmt.Errorf("store purchase order number: %w", err)
		}
	}
	if f.DeliveryMethod != "" {
		if err := s.orders.SetMeta(ctx, orderID, domain.MetaDeliveryMethod, f.DeliveryMethod); err != nil {
			return fmt.Errorf("store delivery method: %w", err)
		}
	}
	return nil
}

var (
	scriptPattern     = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	octetPattern      = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize cleans free-text checkout input: markup and percent-encoded octets are
// removed, whitespace runs collapse to one space and the ends are trimmed.
func Sanitize(f Fields) Fields {
	return Fields{
		PaymentMethod:       SanitizeText(f.PaymentMethod),
		PurchaseOrderNumber: SanitizeText(f.PurchaseOrderNumber),
		DeliveryMethod:      SanitizeText(f.DeliveryMethod),
	}
}

func SanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = octetPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
