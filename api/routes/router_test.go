package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wirebazaar/wirebazaar-backend/api/controllers"
	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/internal/auth"
	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/internal/users"
	"github.com/wirebazaar/wirebazaar-backend/internal/verification"
	pkgAuth "github.com/wirebazaar/wirebazaar-backend/pkg/auth"
	"github.com/wirebazaar/wirebazaar-backend/pkg/auth/session"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) RequestOTP(context.Context, auth.OTPRequest) (*verification.Challenge, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Restore(context.Context, string) (*session.Profile, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

func (stubAuthService) OwnerLogin(context.Context, auth.OwnerLoginRequest) (*auth.OwnerLoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type countingLimiter struct {
	hits map[string]int64
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	c.hits[scope]++
	return c.hits[scope] <= limit, c.hits[scope], nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Storage.Backend = config.StorageBackendLocal
	cfg.JWT = config.JWTConfig{Secret: "router-secret", Issuer: "wirebazaar-test", ExpirationMinutes: 60}
	cfg.AuthRateLimit.OTPWindow = time.Minute
	cfg.AuthRateLimit.OTPIPLimit = 2
	cfg.AuthRateLimit.OTPContactLimit = 2
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config, limiter middleware.RateLimiterStore) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := kvstore.NewMemoryStore()
	keys := kvstore.MemoryKeys{}
	bus := events.NewBus(4)

	catalogSvc, err := catalog.NewService(catalog.NewBlobRepository(store, keys), bus)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Keys: keys, Products: catalogSvc, Publisher: bus})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewBlobRepository(store, keys),
		Cart:    cartSvc,
		Pricing: orders.DefaultPricing(),
		Payment: orders.PaymentTarget{VPA: "merchant@upi", PayeeName: "Wires & Cables Mart", Currency: "INR"},
	})
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	inquirySvc, err := inquiries.NewService(inquiries.NewBlobRepository(store, keys), nil, logg)
	if err != nil {
		t.Fatalf("inquiries service: %v", err)
	}
	userSvc, err := users.NewService(users.NewLocalRepository(store, keys))
	if err != nil {
		t.Fatalf("users service: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics.NewStorefrontMetrics(registry).IncOrdersPlaced()

	return NewRouter(cfg, logg, Dependencies{
		Pingers:     map[string]controllers.Pinger{"redis": stubPinger{}},
		RateLimiter: limiter,
		Sessions:    stubSessionChecker{},
		Events:      bus,
		Gatherer:    registry,
		Auth:        stubAuthService{},
		Users:       userSvc,
		Catalog:     catalogSvc,
		Cart:        cartSvc,
		Orders:      orderSvc,
		Inquiries:   inquirySvc,
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  uuid.NewString(),
		Contact: "9876543210",
		Role:    role,
		JTI:     uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "orders_placed_total") {
		t.Fatalf("expected storefront counters in metrics output")
	}
}

func TestProductsArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=Polycab", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/does-not-exist", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartRequiresClientKey(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without client key got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(middleware.ClientKeyHeader, "browser-key-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with client key got %d", resp.Code)
	}
}

func TestCheckoutRequiresLogin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote?pincode=400001", nil)
	req.Header.Set(middleware.ClientKeyHeader, "browser-key-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote?pincode=400001", nil)
	req.Header.Set(middleware.ClientKeyHeader, "browser-key-123")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusNotFound {
		t.Fatalf("expected checkout handler to run got %d", resp.Code)
	}
}

func TestAdminGroupRequiresOwnerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil))
	if anonymous.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", anonymous.Code)
	}

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	owner := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	owner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOwner))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOTPRouteIsRateLimited(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int64{}}
	router := newTestRouter(t, testConfig(), limiter)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp", strings.NewReader(`{"contact":"9876543210"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt got %d", last)
	}
}

func TestInquirySubmitAcceptsAnonymous(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	body := `{"user_type":"shopkeeper","phone":"9876543210","name":"Meena","address":"Market Road","pincode":"560001","brand":"Havells","color":"Blue","quantity":2,"unit":"coils"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	mine := httptest.NewRecorder()
	router.ServeHTTP(mine, httptest.NewRequest(http.MethodGet, "/api/v1/inquiries/mine", nil))
	if mine.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous listing got %d", mine.Code)
	}
}
