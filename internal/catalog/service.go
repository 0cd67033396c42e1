package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
)

// Service exposes storefront reads and owner upkeep of the catalog.
type Service interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Facets(ctx context.Context) (*Facets, error)
	ListAll(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, input UpsertInput) (*Product, error)
	ToggleActive(ctx context.Context, id string) (*Product, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*Stats, error)
	ExportXLSX(ctx context.Context, w io.Writer) error
	ImportXLSX(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error)
}

// UpsertInput holds an owner's product edit. An empty ID creates a product.
type UpsertInput struct {
	ID             string
	Name           string
	Brand          string
	Category       string
	Colors         []string
	Description    string
	Specifications map[string]string
	BasePrice      decimal.Decimal
	UnitType       enums.UnitType
	StockQuantity  int
	ImageURL       string
	BrochureURL    *string
	IsActive       bool
}

type service struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

// NewService constructs a catalog service instance.
func NewService(repo Repository, publisher events.Publisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{repo: repo, publisher: publisher, now: time.Now}, nil
}

func (s *service) all(ctx context.Context) ([]Product, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return products, nil
}

// List returns the active products that match filter.
func (s *service) List(ctx context.Context, filter Filter) ([]Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns an active product. Inactive products are hidden from shoppers.
func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) find(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Facets returns the fixed brand and category lists followed by any extra
// values owners have introduced.
func (s *service) Facets(ctx context.Context) (*Facets, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	brands := append([]string{}, Brands...)
	categories := append([]string{}, Categories...)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		brands = appendMissing(brands, p.Brand)
		categories = appendMissing(categories, p.Category)
	}
	return &Facets{Brands: brands, Categories: categories}, nil
}

func appendMissing(list []string, value string) []string {
	if strings.TrimSpace(value) == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// ListAll returns every product including inactive ones.
func (s *service) ListAll(ctx context.Context) ([]Product, error) {
	return s.all(ctx)
}

// Upsert creates or replaces a product.
func (s *service) Upsert(ctx context.Context, input UpsertInput) (*Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := Product{
		ID:             strings.TrimSpace(input.ID),
		Name:           strings.TrimSpace(input.Name),
		Brand:          strings.TrimSpace(input.Brand),
		Category:       strings.TrimSpace(input.Category),
		Colors:         trimColors(input.Colors),
		Description:    strings.TrimSpace(input.Description),
		Specifications: copySpecs(input.Specifications),
		BasePrice:      input.BasePrice.Round(2),
		UnitType:       input.UnitType,
		StockQuantity:  input.StockQuantity,
		ImageURL:       strings.TrimSpace(input.ImageURL),
		BrochureURL:    input.BrochureURL,
		IsActive:       input.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	} else {
		existing, err := s.repo.FindByID(ctx, product.ID)
		switch {
		case err == nil:
			product.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrNotFound):
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}
	s.publisher.Publish(ctx, events.Event{Name: events.ProductsUpdated})
	return &product, nil
}

func validateUpsert(input UpsertInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case strings.TrimSpace(input.Brand) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	case strings.TrimSpace(input.Category) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case input.BasePrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price must not be negative")
	case input.StockQuantity < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must not be negative")
	case !input.UnitType.IsValid():
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unit_type must be %q or %q", enums.UnitTypeMetres, enums.UnitTypeCoils)
	case input.IsActive && len(trimColors(input.Colors)) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "an active product needs at least one color")
	}
	return nil
}

func trimColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ToggleActive flips the product's visibility on the storefront.
func (s *service) ToggleActive(ctx context.Context, id string) (*Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	product.IsActive = !product.IsActive
	product.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, *product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}
	s.publisher.Publish(ctx, events.Event{Name: events.ProductsUpdated})
	return product, nil
}

// Delete removes a product from the catalog.
func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.publisher.Publish(ctx, events.Event{Name: events.ProductsUpdated})
	return nil
}

// Stats counts products by visibility and stock.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	stats := computeStats(products)
	return &stats, nil
}
