package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/wirebazaar/wirebazaar-backend/pkg/db/types"
)

// Product is a catalog row.
type Product struct {
	ID             string                          `gorm:"primaryKey;type:text"`
	Name           string                          `gorm:"column:name;not null"`
	Brand          string                          `gorm:"column:brand;not null;index"`
	Category       string                          `gorm:"column:category;not null;index"`
	Colors         dbtypes.JSON[[]string]          `gorm:"column:colors;type:jsonb;not null"`
	Description    string                          `gorm:"column:description"`
	Specifications dbtypes.JSON[map[string]string] `gorm:"column:specifications;type:jsonb"`
	BasePrice      decimal.Decimal                 `gorm:"column:base_price;type:numeric(12,2);not null"`
	UnitType       string                          `gorm:"column:unit_type;not null"`
	StockQuantity  int                             `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL       string                          `gorm:"column:image_url"`
	BrochureURL    *string                         `gorm:"column:brochure_url"`
	IsActive       bool                            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
