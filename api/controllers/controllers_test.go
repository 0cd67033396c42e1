package controllers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	pkgauth "github.com/wirebazaar/wirebazaar-backend/pkg/auth"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

const testClientKey = "client-key-0001"

type storefront struct {
	bus       *events.Bus
	catalog   catalog.Service
	cart      cart.Service
	orders    orders.Service
	inquiries inquiries.Service
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	store := kvstore.NewMemoryStore()
	keys := kvstore.MemoryKeys{}
	bus := events.NewBus(8)

	catalogSvc, err := catalog.NewService(catalog.NewBlobRepository(store, keys), bus)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Keys: keys, Products: catalogSvc, Publisher: bus})
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewBlobRepository(store, keys),
		Cart:    cartSvc,
		Pricing: orders.DefaultPricing(),
		Payment: orders.PaymentTarget{VPA: "merchant@upi", PayeeName: "Wires & Cables Mart", Currency: "INR"},
	})
	require.NoError(t, err)
	inquirySvc, err := inquiries.NewService(inquiries.NewBlobRepository(store, keys), nil, nil)
	require.NoError(t, err)

	return &storefront{bus: bus, catalog: catalogSvc, cart: cartSvc, orders: orderSvc, inquiries: inquirySvc}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withClient(req *http.Request, userID string) *http.Request {
	ctx := middleware.WithClientKey(req.Context(), testClientKey)
	if userID != "" {
		ctx = middleware.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func addToCart(t *testing.T, sf *storefront, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	req := withClient(jsonRequest(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": "1",
		"color":      "Red",
		"unit_type":  "metres",
		"quantity":   quantity,
	}), "")
	resp := httptest.NewRecorder()
	CartAddLine(sf.cart, nil)(resp, req)
	return resp
}

func TestCartAddLineMergesAndPrices(t *testing.T) {
	sf := newStorefront(t)

	resp := addToCart(t, sf, 10)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	resp = addToCart(t, sf, 5)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var got struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Subtotal  string `json:"subtotal"`
		ItemCount int    `json:"item_count"`
	}
	decodeData(t, resp, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 15, got.Items[0].Quantity)
	assert.Equal(t, "427.5", got.Subtotal)

	req := withClient(jsonRequest(t, http.MethodPatch, "/api/v1/cart/items/x", map[string]any{"quantity": 0}), "")
	req = withURLParam(req, "lineId", got.Items[0].ID)
	resp = httptest.NewRecorder()
	CartSetQuantity(sf.cart, nil)(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	decodeData(t, resp, &got)
	assert.Empty(t, got.Items)
}

func TestCartAddLineRejectsBadPayload(t *testing.T) {
	sf := newStorefront(t)

	resp := addToCart(t, sf, 0)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	req := withClient(jsonRequest(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": "1",
		"color":      "Red",
		"unit_type":  "bundles",
		"quantity":   3,
	}), "")
	resp = httptest.NewRecorder()
	CartAddLine(sf.cart, nil)(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func placeOrder(t *testing.T, sf *storefront, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := withClient(jsonRequest(t, http.MethodPost, "/api/v1/checkout", map[string]any{
		"name":    "Ravi Kumar",
		"email":   "ravi@example.com",
		"phone":   "9876543210",
		"address": "12 MG Road",
		"pincode": "400001",
	}), userID)
	resp := httptest.NewRecorder()
	CheckoutPlace(sf.orders, nil)(resp, req)
	return resp
}

func TestCheckoutPlaceBuildsUPIOrder(t *testing.T) {
	sf := newStorefront(t)
	require.Equal(t, http.StatusCreated, addToCart(t, sf, 100).Code)

	quoteReq := withClient(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote?pincode=400001", nil), "user-1")
	quoteResp := httptest.NewRecorder()
	CheckoutQuote(sf.orders, nil)(quoteResp, quoteReq)
	require.Equal(t, http.StatusOK, quoteResp.Code, quoteResp.Body.String())
	var quote struct {
		ShippingCost string `json:"shipping_cost"`
		Total        string `json:"total"`
	}
	decodeData(t, quoteResp, &quote)
	assert.Equal(t, "50", quote.ShippingCost)
	assert.Equal(t, "2900", quote.Total)

	resp := placeOrder(t, sf, "user-1")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var order struct {
		ID            string `json:"id"`
		TotalAmount   string `json:"total_amount"`
		PaymentMethod string `json:"payment_method"`
		QRCodeData    string `json:"qr_code_data"`
	}
	decodeData(t, resp, &order)
	assert.Equal(t, "2900", order.TotalAmount)
	assert.Equal(t, string(enums.PaymentMethodQRCode), order.PaymentMethod)
	assert.True(t, strings.HasPrefix(order.QRCodeData, "upi://pay?"), order.QRCodeData)

	lines, err := sf.cart.Lines(context.Background(), testClientKey)
	require.NoError(t, err)
	assert.Empty(t, lines)

	again := placeOrder(t, sf, "user-1")
	assert.Equal(t, http.StatusUnprocessableEntity, again.Code)
	assert.Equal(t, "EMPTY_CART", decodeErrorCode(t, again))
}

func TestCheckoutPlaceRequiresLogin(t *testing.T) {
	sf := newStorefront(t)
	require.Equal(t, http.StatusCreated, addToCart(t, sf, 1).Code)

	resp := placeOrder(t, sf, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminOrderUpdateStatus(t *testing.T) {
	sf := newStorefront(t)
	require.Equal(t, http.StatusCreated, addToCart(t, sf, 10).Code)
	placed := placeOrder(t, sf, "user-1")
	require.Equal(t, http.StatusCreated, placed.Code, placed.Body.String())
	var order struct {
		ID string `json:"id"`
	}
	decodeData(t, placed, &order)

	req := withURLParam(jsonRequest(t, http.MethodPatch, "/api/admin/v1/orders/x/status", map[string]any{
		"status":         "delivered",
		"payment_status": "pending",
	}), "orderId", order.ID)
	resp := httptest.NewRecorder()
	AdminOrderUpdateStatus(sf.orders, nil)(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	decodeData(t, resp, &updated)
	assert.Equal(t, "delivered", updated.Status)
	assert.Equal(t, "pending", updated.PaymentStatus)

	req = withURLParam(jsonRequest(t, http.MethodPatch, "/api/admin/v1/orders/x/status", map[string]any{
		"status": "teleported",
	}), "orderId", order.ID)
	resp = httptest.NewRecorder()
	AdminOrderUpdateStatus(sf.orders, nil)(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	req = withURLParam(jsonRequest(t, http.MethodPatch, "/api/admin/v1/orders/x/status", map[string]any{
		"status": "shipped",
	}), "orderId", "missing")
	resp = httptest.NewRecorder()
	AdminOrderUpdateStatus(sf.orders, nil)(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminProductsExportImportRoundTrip(t *testing.T) {
	sf := newStorefront(t)

	exportResp := httptest.NewRecorder()
	AdminProductsExport(sf.catalog, nil)(exportResp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/products/export", nil))
	require.Equal(t, http.StatusOK, exportResp.Code)
	assert.Contains(t, exportResp.Header().Get("Content-Disposition"), "products-")
	require.NotZero(t, exportResp.Body.Len())

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(exportResp.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp := httptest.NewRecorder()
	AdminProductsImport(sf.catalog, nil)(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result catalog.ImportResult
	decodeData(t, resp, &result)
	assert.Zero(t, result.Created)
	assert.Positive(t, result.Updated)
}

func TestAdminProductsImportRequiresFile(t *testing.T) {
	sf := newStorefront(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products/import", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	resp := httptest.NewRecorder()
	AdminProductsImport(sf.catalog, nil)(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

var inquiryJWT = config.JWTConfig{Secret: "secret", Issuer: "wirebazaar", ExpirationMinutes: 60}

func inquiryBody() map[string]any {
	return map[string]any{
		"user_type": "electrician",
		"phone":     "98765 43210",
		"name":      "Suresh",
		"address":   "Shop 4, Lamington Road",
		"pincode":   "400007",
		"brand":     "Polycab",
		"color":     "Red",
		"quantity":  5,
		"unit":      "coils",
	}
}

func submitInquiry(t *testing.T, sf *storefront, role enums.ActorRole) *httptest.ResponseRecorder {
	t.Helper()
	handler := middleware.OptionalAuth(inquiryJWT, nil, nil)(InquirySubmit(sf.inquiries, nil))
	req := jsonRequest(t, http.MethodPost, "/api/v1/inquiries", inquiryBody())
	if role != "" {
		token, err := pkgauth.MintAccessToken(inquiryJWT, time.Now(), pkgauth.AccessTokenPayload{
			UserID:  "user-7",
			Contact: "9876543210",
			Role:    role,
			JTI:     "session-7",
		})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestInquirySubmitVerifiesMatchingCustomer(t *testing.T) {
	sf := newStorefront(t)

	var got struct {
		UserID   *string `json:"user_id"`
		Verified bool    `json:"verified"`
	}

	resp := submitInquiry(t, sf, enums.ActorRoleCustomer)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	decodeData(t, resp, &got)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "user-7", *got.UserID)
	assert.True(t, got.Verified)

	got.UserID, got.Verified = nil, false
	resp = submitInquiry(t, sf, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	decodeData(t, resp, &got)
	assert.Nil(t, got.UserID)
	assert.False(t, got.Verified)

	got.UserID, got.Verified = nil, false
	resp = submitInquiry(t, sf, enums.ActorRoleOwner)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	decodeData(t, resp, &got)
	assert.Nil(t, got.UserID)
	assert.False(t, got.Verified)
}

func TestEventsStreamDeliversScopedEvents(t *testing.T) {
	sf := newStorefront(t)
	handler := EventsStream(sf.bus, time.Hour, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r.WithContext(middleware.WithClientKey(r.Context(), testClientKey)))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return sf.bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	sf.bus.Publish(context.Background(), events.Event{Name: events.CartUpdated, Scope: "someone-else"})
	sf.bus.Publish(context.Background(), events.Event{Name: events.CartUpdated, Scope: testClientKey})
	sf.bus.Publish(context.Background(), events.Event{Name: events.ProductsUpdated})

	var names []string
	for len(names) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, strings.TrimSpace(name))
		}
	}
	assert.Equal(t, []string{string(events.CartUpdated), string(events.ProductsUpdated)}, names)
}

func TestEventsStreamEndsWhenBusCloses(t *testing.T) {
	sf := newStorefront(t)
	handler := EventsStream(sf.bus, time.Hour, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r.WithContext(middleware.WithClientKey(r.Context(), testClientKey)))
	}))
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return sf.bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	sf.bus.Close()

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(resp.Body)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream stayed open after the bus closed")
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Storage.Backend = "local"

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"redis": stubPinger{}, "db": nil})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-WireBazaar-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{err: errors.New("refused")}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "DEPENDENCY_ERROR", decodeErrorCode(t, resp))
}
