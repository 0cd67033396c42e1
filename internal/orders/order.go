// Package orders turns a cart into an order: shipping and delivery estimates,
// order numbers, the UPI payment payload, and the owner's status updates.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	dbtypes "github.com/wirebazaar/wirebazaar-backend/pkg/db/types"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// CustomerInfo is the shipping form captured at checkout.
type CustomerInfo struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Pincode string  `json:"pincode"`
}

// Item is the immutable snapshot of a cart line inside an order.
type Item struct {
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

// Order is a placed order.
type Order struct {
	ID                string              `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            *string             `json:"user_id,omitempty"`
	Customer          CustomerInfo        `json:"customer_info"`
	Items             []Item              `json:"items"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	ShippingCost      decimal.Decimal     `json:"shipping_cost"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	Status            enums.OrderStatus   `json:"status"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	QRCodeData        *string             `json:"qr_code_data,omitempty"`
	TransactionID     *string             `json:"transaction_id,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// BelongsTo reports whether the order was placed by userID.
func (o Order) BelongsTo(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}

func itemsFromLines(lines []cart.Line) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Brand:       l.Brand,
			Color:       l.Color,
			Quantity:    l.Quantity,
			UnitType:    l.UnitType,
			UnitPrice:   l.UnitPrice,
			ImageURL:    l.ImageURL,
		})
	}
	return items
}

func toModel(o Order) *models.Order {
	items := make([]models.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, models.OrderItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Brand:       it.Brand,
			Color:       it.Color,
			Quantity:    it.Quantity,
			UnitType:    string(it.UnitType),
			UnitPrice:   it.UnitPrice,
			ImageURL:    it.ImageURL,
		})
	}
	return &models.Order{
		ID:                o.ID,
		UserID:            o.UserID,
		OrderNumber:       o.OrderNumber,
		CustomerName:      o.Customer.Name,
		CustomerEmail:     o.Customer.Email,
		CustomerPhone:     o.Customer.Phone,
		CustomerAddress:   o.Customer.Address,
		CustomerCity:      o.Customer.City,
		CustomerState:     o.Customer.State,
		CustomerPincode:   o.Customer.Pincode,
		Items:             dbtypes.NewJSON(items),
		Subtotal:          o.Subtotal,
		ShippingCost:      o.ShippingCost,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethod:     string(o.PaymentMethod),
		QRCodeData:        o.QRCodeData,
		TransactionID:     o.TransactionID,
		EstimatedDelivery: o.EstimatedDelivery,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func fromModel(m models.Order) Order {
	items := make([]Item, 0, len(m.Items.Data))
	for _, it := range m.Items.Data {
		items = append(items, Item{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Brand:       it.Brand,
			Color:       it.Color,
			Quantity:    it.Quantity,
			UnitType:    enums.UnitType(it.UnitType),
			UnitPrice:   it.UnitPrice,
			ImageURL:    it.ImageURL,
		})
	}
	return Order{
		ID:          m.ID,
		OrderNumber: m.OrderNumber,
		UserID:      m.UserID,
		Customer: CustomerInfo{
			Name:    m.CustomerName,
			Email:   m.CustomerEmail,
			Phone:   m.CustomerPhone,
			Address: m.CustomerAddress,
			City:    m.CustomerCity,
			State:   m.CustomerState,
			Pincode: m.CustomerPincode,
		},
		Items:             items,
		Subtotal:          m.Subtotal,
		ShippingCost:      m.ShippingCost,
		TotalAmount:       m.TotalAmount,
		Status:            enums.OrderStatus(m.Status),
		PaymentStatus:     enums.PaymentStatus(m.PaymentStatus),
		PaymentMethod:     enums.PaymentMethod(m.PaymentMethod),
		QRCodeData:        m.QRCodeData,
		TransactionID:     m.TransactionID,
		EstimatedDelivery: m.EstimatedDelivery,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
