package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

const checkoutNote = "Order placed via checkout"

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Service exposes checkout and order management.
type Service interface {
	Quote(ctx context.Context, clientKey, pincode string) (*Quote, error)
	Place(ctx context.Context, input PlaceInput) (*Order, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
	GetByID(ctx context.Context, orderID, userID string) (*Order, error)
	ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus, paymentStatus *enums.PaymentStatus) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

// CartReader is the part of the cart the checkout needs.
type CartReader interface {
	Lines(ctx context.Context, clientKey string) ([]cart.Line, error)
	Clear(ctx context.Context, clientKey string) error
}

// PlaceInput carries a checkout submission.
type PlaceInput struct {
	ClientKey string
	UserID    string
	Customer  CustomerInfo
}

// Quote previews the totals of the current cart for a pincode.
type Quote struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	Total             decimal.Decimal `json:"total"`
	ItemCount         int             `json:"item_count"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
}

// ListResult is a page of orders.
type ListResult struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Stats summarises all orders for the back-office dashboard.
type Stats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	ShippedOrders    int             `json:"shipped_orders"`
	CompletedOrders  int             `json:"completed_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	GrossOrderValue  decimal.Decimal `json:"gross_order_value"`
}

// Notifier is told about every placed order.
type Notifier interface {
	OrderPlaced(ctx context.Context, order Order) error
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Repo     Repository
	Cart     CartReader
	Pricing  Pricing
	Payment  PaymentTarget
	Metrics  *metrics.StorefrontMetrics
	Notifier Notifier
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	cart     CartReader
	pricing  Pricing
	payment  PaymentTarget
	metrics  *metrics.StorefrontMetrics
	notifier Notifier
	logg     *logger.Logger
	now      func() time.Time
	random   func() int
	newID    func() string
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if strings.TrimSpace(params.Payment.VPA) == "" {
		return nil, fmt.Errorf("upi vpa required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		cart:     params.Cart,
		pricing:  params.Pricing,
		payment:  params.Payment,
		metrics:  params.Metrics,
		notifier: params.Notifier,
		logg:     logg,
		now:      time.Now,
		random:   func() int { return rand.Intn(1000) },
		newID:    uuid.NewString,
	}, nil
}

func (s *service) Quote(ctx context.Context, clientKey, pincode string) (*Quote, error) {
	lines, err := s.cart.Lines(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	subtotal := cart.Total(lines)
	quote := &Quote{
		Subtotal:     subtotal,
		ShippingCost: s.pricing.ShippingCost(pincode, subtotal),
		ItemCount:    cart.ItemCount(lines),
	}
	quote.Total = quote.Subtotal.Add(quote.ShippingCost)
	if pincode = strings.TrimSpace(pincode); pincode != "" {
		eta := s.pricing.EstimatedDelivery(pincode, s.now().UTC())
		quote.EstimatedDelivery = &eta
	}
	return quote, nil
}

// Place converts the caller's cart into a pending order. The cart is cleared
// only after the order has been stored.
func (s *service) Place(ctx context.Context, input PlaceInput) (*Order, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to place an order")
	}
	customer, err := normalizeCustomer(input.Customer)
	if err != nil {
		return nil, err
	}

	lines, err := s.cart.Lines(ctx, input.ClientKey)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	now := s.now().UTC()
	subtotal := cart.Total(lines)
	shipping := s.pricing.ShippingCost(customer.Pincode, subtotal)
	total := subtotal.Add(shipping)
	number := GenerateOrderNumber(now, s.random())
	qr := UPIPayload(s.payment, total, number)
	eta := s.pricing.EstimatedDelivery(customer.Pincode, now)
	note := checkoutNote

	order := &Order{
		ID:                s.newID(),
		OrderNumber:       number,
		UserID:            &userID,
		Customer:          customer,
		Items:             itemsFromLines(lines),
		Subtotal:          subtotal,
		ShippingCost:      shipping,
		TotalAmount:       total,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		PaymentMethod:     enums.PaymentMethodQRCode,
		QRCodeData:        &qr,
		EstimatedDelivery: &eta,
		Notes:             &note,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store order")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.StringFixed(2),
	})
	if err := s.cart.Clear(ctx, input.ClientKey); err != nil {
		s.logg.Error(ctx, "order.cart_clear_failed", err)
	}
	s.metrics.IncOrdersPlaced()
	s.logg.Info(ctx, "order.placed")

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, *order); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order.notification_failed")
		}
	}
	return order, nil
}

func normalizeCustomer(in CustomerInfo) (CustomerInfo, error) {
	out := CustomerInfo{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		City:    trimOptional(in.City),
		State:   trimOptional(in.State),
		Pincode: strings.TrimSpace(in.Pincode),
	}
	missing := []string{}
	for field, value := range map[string]string{
		"name":    out.Name,
		"email":   out.Email,
		"phone":   out.Phone,
		"address": out.Address,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return CustomerInfo{}, pkgerrors.New(pkgerrors.CodeValidation, "customer details incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	if !pincodePattern.MatchString(out.Pincode) {
		return CustomerInfo{}, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}
	return out, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// GetByID returns an order. A non-empty userID restricts the lookup to that
// user's orders.
func (s *service) GetByID(ctx context.Context, orderID, userID string) (*Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if userID != "" && !order.BelongsTo(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	orders, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Orders: orders, NextCursor: next}, nil
}

// UpdateStatus sets the order status and, when given, the payment status. No
// transition rules apply.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus, paymentStatus *enums.PaymentStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status).
			WithDetails(map[string]any{"allowed": enums.OrderStatuses()})
	}
	if paymentStatus != nil && !paymentStatus.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment status %q", *paymentStatus)
	}
	order, err := s.repo.UpdateStatus(ctx, orderID, StatusUpdate{
		Status:        status,
		PaymentStatus: paymentStatus,
		At:            s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID,
		"status":         string(order.Status),
		"payment_status": string(order.PaymentStatus),
	})
	if UnusualCombination(order.Status, order.PaymentStatus) {
		s.logg.Warn(ctx, "order.unusual_status_combination")
	} else {
		s.logg.Info(ctx, "order.status_updated")
	}
	return order, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	buckets, err := s.repo.Buckets(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order stats")
	}
	stats := &Stats{TotalRevenue: decimal.Zero, GrossOrderValue: decimal.Zero}
	for _, b := range buckets {
		stats.TotalOrders += b.Count
		stats.GrossOrderValue = stats.GrossOrderValue.Add(b.Amount)
		switch b.Status {
		case enums.OrderStatusPending:
			stats.PendingOrders += b.Count
		case enums.OrderStatusProcessing:
			stats.ProcessingOrders += b.Count
		case enums.OrderStatusShipped:
			stats.ShippedOrders += b.Count
		case enums.OrderStatusDelivered:
			stats.CompletedOrders += b.Count
		}
		if b.PaymentStatus == enums.PaymentStatusCompleted {
			stats.TotalRevenue = stats.TotalRevenue.Add(b.Amount)
		}
	}
	return stats, nil
}
