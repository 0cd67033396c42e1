// Package cart keeps one shopping cart per client key. Lines are merged by
// product, color and unit type, and every change is announced on the event bus.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// Line is a single cart row.
type Line struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	UnitType    enums.UnitType  `json:"unit_type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url"`
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) sameItem(productID, color string, unit enums.UnitType) bool {
	return l.ProductID == productID && l.Color == color && l.UnitType == unit
}

// Cart is the snapshot returned to clients.
type Cart struct {
	Lines     []Line          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// Total sums unit price times quantity across lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ItemCount sums quantities across lines.
func ItemCount(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

func snapshot(lines []Line) *Cart {
	if lines == nil {
		lines = []Line{}
	}
	return &Cart{Lines: lines, Subtotal: Total(lines), ItemCount: ItemCount(lines)}
}
