package orders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

type stubCart struct {
	mu       sync.Mutex
	lines    map[string][]cart.Line
	clearErr error
}

func (s *stubCart) Lines(_ context.Context, clientKey string) ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cart.Line{}, s.lines[clientKey]...), nil
}

func (s *stubCart) Clear(_ context.Context, clientKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.lines, clientKey)
	return nil
}

type recordingNotifier struct {
	orders []Order
	err    error
}

func (r *recordingNotifier) OrderPlaced(_ context.Context, order Order) error {
	r.orders = append(r.orders, order)
	return r.err
}

var fixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func wireLines() []cart.Line {
	return []cart.Line{
		{ID: "l1", ProductID: "1", ProductName: "FR Wire 1.5 sq mm", Brand: "Polycab", Color: "Red",
			Quantity: 100, UnitType: enums.UnitTypeMetres, UnitPrice: decimal.RequireFromString("28.50"), ImageURL: "img1"},
		{ID: "l2", ProductID: "2", ProductName: "Armoured Cable", Brand: "KEI", Color: "Black",
			Quantity: 3, UnitType: enums.UnitTypeMetres, UnitPrice: decimal.NewFromInt(400), ImageURL: "img2"},
	}
}

func newTestService(t *testing.T, carts *stubCart, notifier Notifier) (*service, *BlobRepository) {
	t.Helper()
	repo := NewBlobRepository(kvstore.NewMemoryStore(), kvstore.MemoryKeys{})
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Cart:     carts,
		Pricing:  DefaultPricing(),
		Payment:  PaymentTarget{VPA: "merchant@upi", PayeeName: "Wires & Cables Mart", Currency: "INR"},
		Notifier: notifier,
	})
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	impl.random = func() int { return 7 }
	ids := 0
	impl.newID = func() string {
		ids++
		return "order-" + string(rune('a'+ids-1))
	}
	return impl, repo
}

func customer(pincode string) CustomerInfo {
	return CustomerInfo{
		Name:    " Ravi Kumar ",
		Email:   "ravi@example.com",
		Phone:   "9876543210",
		Address: "12 MG Road",
		Pincode: pincode,
	}
}

func TestPlaceBuildsPendingOrderAndClearsCart(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"client-1": wireLines()}}
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, carts, notifier)

	order, err := svc.Place(context.Background(), PlaceInput{ClientKey: "client-1", UserID: "user-1", Customer: customer("400001")})
	require.NoError(t, err)

	assert.Equal(t, "order-a", order.ID)
	assert.Equal(t, GenerateOrderNumber(fixedNow, 7), order.OrderNumber)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(4050)))
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(50)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(4100)))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enums.PaymentMethodQRCode, order.PaymentMethod)
	assert.Equal(t, "Ravi Kumar", order.Customer.Name)
	require.NotNil(t, order.Notes)
	assert.Equal(t, "Order placed via checkout", *order.Notes)
	require.NotNil(t, order.QRCodeData)
	assert.Contains(t, *order.QRCodeData, "am=4100.00")
	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, fixedNow.AddDate(0, 0, 3), *order.EstimatedDelivery)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Polycab", order.Items[0].Brand)

	lines, err := carts.Lines(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	require.Len(t, notifier.orders, 1)
}

func TestPlaceChargesShippingBelowThreshold(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()[:1]}}
	svc, _ := newTestService(t, carts, nil)

	order, err := svc.Place(context.Background(), PlaceInput{ClientKey: "c", UserID: "u", Customer: customer("560001")})
	require.NoError(t, err)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("2850")))
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2950)))
	assert.Equal(t, fixedNow.AddDate(0, 0, 5), *order.EstimatedDelivery)
}

func TestPlaceRejections(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"full": wireLines()}}
	svc, repo := newTestService(t, carts, nil)
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceInput{ClientKey: "empty", UserID: "u", Customer: customer("400001")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))

	_, err = svc.Place(ctx, PlaceInput{ClientKey: "full", Customer: customer("400001")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Place(ctx, PlaceInput{ClientKey: "full", UserID: "u", Customer: customer("40001")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bad := customer("400001")
	bad.Address = "  "
	_, err = svc.Place(ctx, PlaceInput{ClientKey: "full", UserID: "u", Customer: bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"missing": []string{"address"}}, pkgerrors.As(err).Details())

	stored, _, err := repo.List(ctx, ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, stored)
	lines, _ := carts.Lines(ctx, "full")
	assert.Len(t, lines, 2)
}

type failingRepo struct {
	Repository
}

func (failingRepo) Create(context.Context, *Order) error {
	return errors.New("connection reset")
}

func TestPlaceKeepsCartWhenStoreFails(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()}}
	svc, _ := newTestService(t, carts, nil)
	svc.repo = failingRepo{}

	_, err := svc.Place(context.Background(), PlaceInput{ClientKey: "c", UserID: "u", Customer: customer("400001")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	lines, _ := carts.Lines(context.Background(), "c")
	assert.Len(t, lines, 2)
}

func TestPlaceSucceedsWhenNotificationFails(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()}}
	svc, _ := newTestService(t, carts, &recordingNotifier{err: errors.New("smtp down")})

	_, err := svc.Place(context.Background(), PlaceInput{ClientKey: "c", UserID: "u", Customer: customer("400001")})
	require.NoError(t, err)
}

func TestPersistedOrderRoundTrips(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()}}
	svc, _ := newTestService(t, carts, nil)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ClientKey: "c", UserID: "u", Customer: customer("400001")})
	require.NoError(t, err)

	loaded, err := svc.GetByID(ctx, placed.ID, "u")
	require.NoError(t, err)

	want, err := json.Marshal(placed)
	require.NoError(t, err)
	got, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestGetByIDScopesToUser(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()}}
	svc, _ := newTestService(t, carts, nil)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ClientKey: "c", UserID: "owner-of-order", Customer: customer("400001")})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, placed.ID, "someone-else")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetByID(ctx, placed.ID, "")
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, "missing", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateStatusIsUnconstrained(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()}}
	svc, _ := newTestService(t, carts, nil)
	ctx := context.Background()

	placed, err := svc.Place(ctx, PlaceInput{ClientKey: "c", UserID: "u", Customer: customer("400001")})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, placed.ID, enums.OrderStatusDelivered, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	assert.Equal(t, enums.PaymentStatusPending, updated.PaymentStatus)
	assert.True(t, UnusualCombination(updated.Status, updated.PaymentStatus))

	completed := enums.PaymentStatusCompleted
	updated, err = svc.UpdateStatus(ctx, placed.ID, enums.OrderStatusPending, &completed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, updated.Status)
	assert.Equal(t, enums.PaymentStatusCompleted, updated.PaymentStatus)

	_, err = svc.UpdateStatus(ctx, placed.ID, enums.OrderStatus("lost"), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, "missing", enums.OrderStatusShipped, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListsAndStats(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{}}
	svc, _ := newTestService(t, carts, nil)
	ctx := context.Background()

	var placed []*Order
	for i, user := range []string{"u1", "u2", "u1"} {
		carts.lines["c"] = wireLines()
		now := fixedNow.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return now }
		order, err := svc.Place(ctx, PlaceInput{ClientKey: "c", UserID: user, Customer: customer("400001")})
		require.NoError(t, err)
		placed = append(placed, order)
	}

	mine, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, placed[2].ID, mine[0].ID)

	_, err = svc.ListForUser(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	completed := enums.PaymentStatusCompleted
	_, err = svc.UpdateStatus(ctx, placed[0].ID, enums.OrderStatusDelivered, &completed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, placed[1].ID, enums.OrderStatusShipped, nil)
	require.NoError(t, err)

	page, err := svc.ListAll(ctx, ListFilters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, placed[2].ID, page.Orders[0].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.ListAll(ctx, ListFilters{}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, placed[0].ID, next.Orders[0].ID)
	assert.Empty(t, next.NextCursor)

	shipped := enums.OrderStatusShipped
	filtered, err := svc.ListAll(ctx, ListFilters{Status: &shipped}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	assert.Equal(t, placed[1].ID, filtered.Orders[0].ID)

	searched, err := svc.ListAll(ctx, ListFilters{Search: placed[0].OrderNumber}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, searched.Orders, 1)

	_, err = svc.ListAll(ctx, ListFilters{}, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.ShippedOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Zero(t, stats.ProcessingOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(4100)), stats.TotalRevenue.String())
	assert.True(t, stats.GrossOrderValue.Equal(decimal.NewFromInt(12300)), stats.GrossOrderValue.String())
}

func TestQuote(t *testing.T) {
	carts := &stubCart{lines: map[string][]cart.Line{"c": wireLines()[:1]}}
	svc, _ := newTestService(t, carts, nil)

	quote, err := svc.Quote(context.Background(), "c", "400001")
	require.NoError(t, err)
	assert.True(t, quote.ShippingCost.Equal(decimal.NewFromInt(50)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(2900)))
	assert.Equal(t, 100, quote.ItemCount)
	require.NotNil(t, quote.EstimatedDelivery)

	quote, err = svc.Quote(context.Background(), "c", "")
	require.NoError(t, err)
	assert.Nil(t, quote.EstimatedDelivery)
	assert.True(t, quote.ShippingCost.Equal(decimal.NewFromInt(100)))
}

func TestConfirmationMessage(t *testing.T) {
	eta := fixedNow.AddDate(0, 0, 3)
	qr := "upi://pay?pa=merchant@upi"
	msg := confirmationMessage(Order{
		OrderNumber:       "WB1",
		Customer:          CustomerInfo{Name: "Ravi", Email: "ravi@example.com"},
		Items:             itemsFromLines(wireLines()),
		Subtotal:          decimal.NewFromInt(4050),
		ShippingCost:      decimal.Zero,
		TotalAmount:       decimal.NewFromInt(4050),
		EstimatedDelivery: &eta,
		QRCodeData:        &qr,
	})
	assert.Equal(t, "ravi@example.com", msg.To)
	assert.Equal(t, "Order WB1 received", msg.Subject)
	assert.Contains(t, msg.Body, "Total: Rs. 4050.00")
	assert.Contains(t, msg.Body, "13 Jan 2025")
	assert.Contains(t, msg.Body, qr)
}
