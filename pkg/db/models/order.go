package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/wirebazaar/wirebazaar-backend/pkg/db/types"
)

// OrderItem is the cart line snapshot stored inside an order's items column.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	UnitType    string          `json:"unit_type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url"`
}

// Order is a placed order.
type Order struct {
	ID                string                    `gorm:"primaryKey;type:text"`
	UserID            *string                   `gorm:"column:user_id;index"`
	OrderNumber       string                    `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName      string                    `gorm:"column:customer_name;not null"`
	CustomerEmail     string                    `gorm:"column:customer_email;not null"`
	CustomerPhone     string                    `gorm:"column:customer_phone;not null"`
	CustomerAddress   string                    `gorm:"column:customer_address;not null"`
	CustomerCity      *string                   `gorm:"column:customer_city"`
	CustomerState     *string                   `gorm:"column:customer_state"`
	CustomerPincode   string                    `gorm:"column:customer_pincode;not null"`
	Items             dbtypes.JSON[[]OrderItem] `gorm:"column:items;type:jsonb;not null"`
	Subtotal          decimal.Decimal           `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost      decimal.Decimal           `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	TotalAmount       decimal.Decimal           `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status            string                    `gorm:"column:status;not null;index"`
	PaymentStatus     string                    `gorm:"column:payment_status;not null"`
	PaymentMethod     string                    `gorm:"column:payment_method;not null"`
	QRCodeData        *string                   `gorm:"column:qr_code_data"`
	TransactionID     *string                   `gorm:"column:transaction_id"`
	EstimatedDelivery *time.Time                `gorm:"column:estimated_delivery"`
	Notes             *string                   `gorm:"column:notes"`
	CreatedAt         time.Time                 `gorm:"column:created_at;not null;index"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;not null"`
}

func (Order) TableName() string { return "orders" }
