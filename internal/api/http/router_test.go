package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/ratelimit"
	"github.com/spec-kit/storefront-api/internal/repository/memory"
	"github.com/spec-kit/storefront-api/internal/service"
)

type testServer struct {
	app     *fiber.App
	clock   *clock.FakeClock
	store   *memory.Store
	tokens  *auth.TokenManager
	catalog *service.CatalogService
}

func newTestServer(t *testing.T, appCfg config.AppConfig) *testServer {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	store := memory.New(clk)
	authCfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 10,
		BcryptCost:              bcrypt.MinCost,
		OTPTTLMinutes:           10,
		OTPCooldownSeconds:      60,
		OTPCooldownRetentionMin: 5,
		OTPCooldownBackend:      config.CooldownBackendMemory,
		OTPDebugEcho:            true,
	}
	tokens := auth.NewTokenManager(authCfg.JWTSecret, authCfg.AccessTokenTTL(), clk)
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		UserRepo:          store.Users(),
		PasswordResetRepo: store.PasswordResets(),
		Limiter:           ratelimit.NewMemoryLimiter(clk, authCfg.OTPCooldown(), authCfg.OTPCooldownRetention()),
		Tokens:            tokens,
		Clock:             clk,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	catalog := service.NewCatalogService(store.Products())
	orders := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  store.Orders(),
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, appCfg, logger, metrics)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("storefront-api", "test", nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(service.NewUserService(store.Users())),
		Cart:           handlers.NewCartHandler(service.NewCartService(store.Carts(), store.Products())),
		Orders:         handlers.NewOrdersHandler(orders),
		Products:       handlers.NewProductsHandler(catalog),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
	})
	return &testServer{app: app, clock: clk, store: store, tokens: tokens, catalog: catalog}
}

func defaultAppConfig() config.AppConfig {
	return config.AppConfig{ClientURL: "http://localhost:3000", RequestTimeoutSeconds: 5}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, phone string) (string, map[string]any) {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/auth/send-otp", fiber.Map{"phone": phone}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	code := data(body)["otp"].(string)

	status, body = s.do(t, fiber.MethodPost, "/api/auth/verify-otp", fiber.Map{"phone": phone, "otp": code}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	return data(body)["token"].(string), data(body)["user"].(map[string]any)
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	user := &domain.User{Phone: "9000000001", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true}
	require.NoError(t, s.store.Users().Create(context.Background(), user))
	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func (s *testServer) product(t *testing.T, name string, price int64, qty int) *domain.Product {
	t.Helper()
	p, err := s.catalog.Create(context.Background(), service.ProductInput{
		Name: name, SKU: name + "-sku", Price: price, Quantity: qty, TrackQuantity: true, IsActive: true,
	})
	require.NoError(t, err)
	return p
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

func TestOTPFlow(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())

	status, body := s.do(t, fiber.MethodPost, "/api/auth/send-otp", fiber.Map{"phone": "+91 98765-43210"}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "9876543210", data(body)["phone"])
	assert.Equal(t, false, data(body)["isRegistered"])
	code := data(body)["otp"].(string)
	assert.Len(t, code, 6)

	status, body = s.do(t, fiber.MethodPost, "/api/auth/send-otp", fiber.Map{"phone": "9876543210"}, "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Equal(t, false, body["success"])

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	status, body = s.do(t, fiber.MethodPost, "/api/auth/verify-otp", fiber.Map{"phone": "9876543210", "otp": wrong}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "OTP_MISMATCH", body["code"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/verify-otp", fiber.Map{"phone": "9876543210", "otp": code}, "")
	require.Equal(t, fiber.StatusOK, status)
	token := data(body)["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, false, data(body)["isRegistered"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/verify-otp", fiber.Map{"phone": "9876543210", "otp": code}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "OTP_MISMATCH", body["code"])

	status, body = s.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	user := data(body)["user"].(map[string]any)
	assert.Equal(t, "9876543210", user["phone"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "otp")

	details := fiber.Map{"name": "Asha", "email": "Asha@Example.com", "password": "secret1"}
	status, body = s.do(t, fiber.MethodPost, "/api/auth/register-details", details, token)
	require.Equal(t, fiber.StatusOK, status, body)
	user = data(body)["user"].(map[string]any)
	assert.Equal(t, true, user["isRegistered"])
	assert.Equal(t, "asha@example.com", user["email"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/register-details", details, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_REGISTERED", body["code"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/login", fiber.Map{"email": "asha@example.com", "password": "secret1"}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, data(body)["isRegistered"])

	status, _ = s.do(t, fiber.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())

	tests := []struct {
		name  string
		path  string
		body  any
		field string
	}{
		{name: "missing phone", path: "/api/auth/send-otp", body: fiber.Map{}, field: "phone"},
		{name: "otp not numeric", path: "/api/auth/verify-otp", body: fiber.Map{"phone": "9876543210", "otp": "12ab56"}, field: "otp"},
		{name: "otp too short", path: "/api/auth/verify-otp", body: fiber.Map{"phone": "9876543210", "otp": "123"}, field: "otp"},
		{name: "bad login email", path: "/api/auth/login", body: fiber.Map{"email": "nope", "password": "x"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, fiber.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_FAILED", body["code"])
			details, ok := body["details"].(map[string]any)
			require.True(t, ok, body)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/send-otp", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())
	token, _ := s.login(t, "9876543210")

	status, body := s.do(t, fiber.MethodGet, "/api/cart", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	status, _ = s.do(t, fiber.MethodGet, "/api/cart", nil, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = s.do(t, fiber.MethodGet, "/api/users", nil, token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = s.do(t, fiber.MethodPost, "/api/products", fiber.Map{"name": "x", "sku": "x"}, token)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = s.do(t, fiber.MethodGet, "/api/nowhere", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())
	adminToken := s.admin(t)
	token, user := s.login(t, "9876543210")

	status, _ := s.do(t, fiber.MethodDelete, "/api/users/"+user["id"].(string), nil, adminToken)
	require.Equal(t, fiber.StatusOK, status)

	status, body := s.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	status, _ = s.do(t, fiber.MethodGet, "/api/users/not-a-uuid", nil, adminToken)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCartAndCheckout(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())
	token, _ := s.login(t, "9876543210")
	lamp := s.product(t, "lamp", 2500, 3)

	status, body := s.do(t, fiber.MethodPost, "/api/cart/items", fiber.Map{"productId": lamp.ID, "quantity": 2}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	cart := data(body)["cart"].(map[string]any)
	assert.EqualValues(t, 2, cart["itemCount"])
	assert.EqualValues(t, 5000, cart["subtotal"])

	status, body = s.do(t, fiber.MethodPost, "/api/cart/items", fiber.Map{"productId": lamp.ID, "quantity": 5}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	status, _ = s.do(t, fiber.MethodPut, "/api/cart/items/not-a-uuid", fiber.Map{"quantity": 1}, token)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, fiber.MethodPost, "/api/orders", fiber.Map{"orderItems": []any{}, "paymentMethod": "card", "shippingAddress": shipping()}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_ORDER", body["code"])

	order := fiber.Map{
		"orderItems":      []fiber.Map{{"productId": lamp.ID, "quantity": 2}},
		"shippingAddress": shipping(),
		"paymentMethod":   "card",
		"taxPrice":        100,
		"shippingPrice":   500,
	}
	status, body = s.do(t, fiber.MethodPost, "/api/orders", order, token)
	require.Equal(t, fiber.StatusCreated, status, body)
	placed := data(body)["order"].(map[string]any)
	assert.EqualValues(t, 5000, placed["itemsPrice"])
	assert.EqualValues(t, 5600, placed["totalPrice"])
	assert.Equal(t, "pending", placed["status"])
	orderID := placed["id"].(string)

	status, body = s.do(t, fiber.MethodGet, "/api/cart", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, data(body)["cart"].(map[string]any)["itemCount"])

	status, body = s.do(t, fiber.MethodGet, "/api/products/"+lamp.ID, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	inventory := data(body)["product"].(map[string]any)["inventory"].(map[string]any)
	assert.EqualValues(t, 1, inventory["quantity"])

	status, body = s.do(t, fiber.MethodGet, "/api/orders/myorders", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, data(body)["total"])

	other, _ := s.login(t, "9123456780")
	status, body = s.do(t, fiber.MethodGet, "/api/orders/"+orderID, nil, other)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	payment := fiber.Map{"id": "PAY-1", "status": "COMPLETED", "update_time": "2026-05-01T09:00:00Z", "email_address": "asha@example.com"}
	status, body = s.do(t, fiber.MethodPut, "/api/orders/"+orderID+"/pay", payment, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, data(body)["order"].(map[string]any)["isPaid"])

	adminToken := s.admin(t)
	status, body = s.do(t, fiber.MethodPut, "/api/orders/"+orderID+"/status", fiber.Map{"status": "delivered", "trackingNumber": "TRK1"}, adminToken)
	require.Equal(t, fiber.StatusOK, status, body)
	delivered := data(body)["order"].(map[string]any)
	assert.Equal(t, true, delivered["isDelivered"])
	assert.Equal(t, "TRK1", delivered["trackingNumber"])

	status, body = s.do(t, fiber.MethodPut, "/api/orders/"+orderID+"/status", fiber.Map{"status": "lost"}, adminToken)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	status, body = s.do(t, fiber.MethodGet, "/api/orders", nil, adminToken)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, data(body)["total"])
}

func TestProductAdmin(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())
	adminToken := s.admin(t)

	status, body := s.do(t, fiber.MethodPost, "/api/products", fiber.Map{"name": "Desk", "sku": "DESK-1", "price": 19900, "quantity": 4}, adminToken)
	require.Equal(t, fiber.StatusCreated, status, body)
	product := data(body)["product"].(map[string]any)
	assert.Equal(t, true, product["isActive"])
	id := product["id"].(string)

	status, body = s.do(t, fiber.MethodPost, "/api/products", fiber.Map{"name": "Other", "sku": "DESK-1"}, adminToken)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, _ = s.do(t, fiber.MethodPut, "/api/products/"+id, fiber.Map{"isActive": false}, adminToken)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/products/"+id, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, fiber.MethodGet, "/api/products?search=desk", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, data(body)["total"])
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, defaultAppConfig())

	status, body := s.do(t, fiber.MethodGet, "/api/health", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, fiber.MethodGet, "/api/health/ready", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])

	status, body = s.do(t, fiber.MethodGet, "/api/health/metrics", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, data(body)["requests"])
}

func TestGlobalLimiter(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.RateLimitMax = 2
	cfg.RateLimitWindowMin = 15
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		status, _ := s.do(t, fiber.MethodGet, "/api/products", nil, "")
		require.Equal(t, fiber.StatusOK, status)
	}
	status, body := s.do(t, fiber.MethodGet, "/api/products", nil, "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	status, _ = s.do(t, fiber.MethodGet, "/api/health", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func shipping() fiber.Map {
	return fiber.Map{
		"fullName":   "Asha Rao",
		"address":    "12 MG Road",
		"city":       "Pune",
		"postalCode": "411001",
		"country":    "IN",
	}
}
