package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

// ErrNotFound is returned when no order carries the requested id.
var ErrNotFound = errors.New("orders: order not found")

// ordersBlob is the document name of the key-value order list.
const ordersBlob = "orders"

// Repository persists orders. Lists are newest first.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Order, string, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Order, error)
	Buckets(ctx context.Context) ([]StatusBucket, error)
}

// ListFilters narrows the owner's order list.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	// Search matches order number, customer name, email or phone.
	Search string
}

func (f ListFilters) matches(o Order) bool {
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.PaymentStatus != nil && o.PaymentStatus != *f.PaymentStatus {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{o.OrderNumber, o.Customer.Name, o.Customer.Email, o.Customer.Phone} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// StatusUpdate is the owner's targeted change. A nil PaymentStatus leaves the
// payment state as it is.
type StatusUpdate struct {
	Status        enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	At            time.Time
}

func (u StatusUpdate) apply(o *Order) {
	o.Status = u.Status
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	o.UpdatedAt = u.At
}

// StatusBucket aggregates orders sharing a status pair.
type StatusBucket struct {
	Status        enums.OrderStatus
	PaymentStatus enums.PaymentStatus
	Count         int
	Amount        decimal.Decimal
}

func bucketize(orders []Order) []StatusBucket {
	type key struct {
		status  enums.OrderStatus
		payment enums.PaymentStatus
	}
	index := map[key]int{}
	var buckets []StatusBucket
	for _, o := range orders {
		k := key{o.Status, o.PaymentStatus}
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, StatusBucket{Status: o.Status, PaymentStatus: o.PaymentStatus, Amount: decimal.Zero})
		}
		buckets[i].Count++
		buckets[i].Amount = buckets[i].Amount.Add(o.TotalAmount)
	}
	return buckets
}

func cursorOf(o Order) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}
