// Package catalog serves the wire and cable product list: the built-in seed
// catalog shadowed by owner edits, storefront filtering, and owner upkeep.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	dbtypes "github.com/wirebazaar/wirebazaar-backend/pkg/db/types"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// Product is a sellable wire or cable.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	Colors         []string          `json:"colors"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications,omitempty"`
	BasePrice      decimal.Decimal   `json:"base_price"`
	UnitType       enums.UnitType    `json:"unit_type"`
	StockQuantity  int               `json:"stock_quantity"`
	ImageURL       string            `json:"image_url"`
	BrochureURL    *string           `json:"brochure_url,omitempty"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CanonicalColor returns the product's own spelling of color, matched
// case-insensitively, and false when the color is not offered.
func (p Product) CanonicalColor(color string) (string, bool) {
	color = strings.TrimSpace(color)
	for _, c := range p.Colors {
		if strings.EqualFold(c, color) {
			return c, true
		}
	}
	return "", false
}

// Filter narrows the storefront listing. Empty or "all" brand/category means
// no restriction.
type Filter struct {
	Search   string
	Brand    string
	Category string
}

// Matches applies the filter to a single product. Inactive products never match.
func (f Filter) Matches(p Product) bool {
	if !p.IsActive {
		return false
	}
	if isSet(f.Brand) && p.Brand != f.Brand {
		return false
	}
	if isSet(f.Category) && p.Category != f.Category {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func isSet(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, "all")
}

// Facets lists the brand and category filter options.
type Facets struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
}

// Stats summarises the catalog for the owner dashboard.
type Stats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
	OutOfStock int `json:"out_of_stock"`
}

func computeStats(products []Product) Stats {
	stats := Stats{Total: len(products)}
	for _, p := range products {
		if p.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if p.StockQuantity <= 0 {
			stats.OutOfStock++
		}
	}
	return stats
}

func toModel(p Product) *models.Product {
	return &models.Product{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Colors:         dbtypes.NewJSON(append([]string{}, p.Colors...)),
		Description:    p.Description,
		Specifications: dbtypes.NewJSON(copySpecs(p.Specifications)),
		BasePrice:      p.BasePrice,
		UnitType:       string(p.UnitType),
		StockQuantity:  p.StockQuantity,
		ImageURL:       p.ImageURL,
		BrochureURL:    p.BrochureURL,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromModel(m models.Product) Product {
	return Product{
		ID:             m.ID,
		Name:           m.Name,
		Brand:          m.Brand,
		Category:       m.Category,
		Colors:         append([]string{}, m.Colors.Data...),
		Description:    m.Description,
		Specifications: copySpecs(m.Specifications.Data),
		BasePrice:      m.BasePrice,
		UnitType:       enums.UnitType(m.UnitType),
		StockQuantity:  m.StockQuantity,
		ImageURL:       m.ImageURL,
		BrochureURL:    m.BrochureURL,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func copySpecs(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
