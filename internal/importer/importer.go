package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/pricing"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads product CSV exports and inserts/updates products with their
// price tiers.
//
// A row with an sku starts a product; following rows without an sku add price
// tiers to it. A product row may carry its first tier itself.
//
//	id,sku,name,regular_price,price,remote_guid,tier_min,tier_max,tier_type,tier_amount,tier_customer
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.Named("importer"),
	}
}

// Run parses CSV rows and upserts products grouped by sku.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if sku := pick(record, index, "sku"); sku != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = parseProduct(record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
		} else if current == nil {
			if pick(record, index, "tier_min") != "" {
				return imported, fmt.Errorf("line %d: tier row before any product", line)
			}
			continue
		}

		tier, ok, err := parseTier(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			current.Tiers = append(current.Tiers, tier)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("import finished", zap.Int("products", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.ID <= 0 || p.Name == "" {
		return fmt.Errorf("invalid product row (missing required fields) for sku %q", p.SKU)
	}
	if p.RemoteGUID == "" {
		i.logger.Warn("product has no remote guid", zap.String("sku", p.SKU))
	}
	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.SKU, err)
	}
	return nil
}

func parseProduct(record []string, index map[string]int) (*domain.Product, error) {
	p := &domain.Product{
		SKU:        pick(record, index, "sku"),
		Name:       pick(record, index, "name"),
		RemoteGUID: strings.ToUpper(pick(record, index, "remote_guid")),
	}
	id, err := strconv.ParseInt(pick(record, index, "id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id for sku %q", p.SKU)
	}
	p.ID = id
	if p.RegularPrice, err = parseDecimal(pick(record, index, "regular_price")); err != nil {
		return nil, fmt.Errorf("regular_price for sku %q: %w", p.SKU, err)
	}
	if p.Price, err = parseDecimal(pick(record, index, "price")); err != nil {
		return nil, fmt.Errorf("price for sku %q: %w", p.SKU, err)
	}
	if p.Price.IsZero() {
		p.Price = p.RegularPrice
	}
	return p, nil
}

// parseTier reads the tier columns of a row; ok is false when the row has none.
func parseTier(record []string, index map[string]int) (pricing.Tier, bool, error) {
	minRaw := pick(record, index, "tier_min")
	if minRaw == "" {
		return pricing.Tier{}, false, nil
	}
	var (
		t   pricing.Tier
		err error
	)
	if t.Min, err = strconv.Atoi(minRaw); err != nil {
		return t, false, fmt.Errorf("invalid tier_min %q", minRaw)
	}
	if maxRaw := pick(record, index, "tier_max"); maxRaw != "" {
		if t.Max, err = strconv.Atoi(maxRaw); err != nil {
			return t, false, fmt.Errorf("invalid tier_max %q", maxRaw)
		}
	}
	t.DiscountType = strings.ToLower(pick(record, index, "tier_type"))
	if t.DiscountType == "" {
		t.DiscountType = pricing.DiscountPercentage
	}
	if t.Amount, err = parseDecimal(pick(record, index, "tier_amount")); err != nil {
		return t, false, fmt.Errorf("tier_amount: %w", err)
	}
	t.Customer = pick(record, index, "tier_customer")
	return t, true, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
