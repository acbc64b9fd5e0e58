package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/ratelimit"
	"github.com/spec-kit/storefront-api/internal/repository/memory"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	clock    *clock.FakeClock
	store    *memory.Store
	limiter  *ratelimit.MemoryLimiter
	tokens   *auth.TokenManager
	recorder *recorder
	authCfg  config.AuthConfig

	auth    *AuthService
	carts   *CartService
	orders  *OrderService
	catalog *CatalogService
	users   *UserService
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   30 * 24 * 60,
		PasswordResetTTLMinutes: 10,
		BcryptCost:              bcrypt.MinCost,
		OTPTTLMinutes:           10,
		OTPCooldownSeconds:      60,
		OTPCooldownRetentionMin: 5,
		OTPCooldownSweepSeconds: 60,
		OTPCooldownBackend:      config.CooldownBackendMemory,
		OTPDebugEcho:            true,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:    clock.Fake(epoch),
		recorder: &recorder{},
		authCfg:  testAuthConfig(),
	}
	env.store = memory.New(env.clock)
	env.limiter = ratelimit.NewMemoryLimiter(env.clock, env.authCfg.OTPCooldown(), env.authCfg.OTPCooldownRetention())
	env.tokens = auth.NewTokenManager(env.authCfg.JWTSecret, env.authCfg.AccessTokenTTL(), env.clock)

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventOTPIssued,
		events.EventRegistrationCompleted,
		events.EventPasswordResetRequested,
		events.EventOrderPlaced,
	} {
		dispatcher.Subscribe(et, env.recorder.handle)
	}

	env.auth = NewAuthService(env.authCfg, AuthDependencies{
		UserRepo:          env.store.Users(),
		PasswordResetRepo: env.store.PasswordResets(),
		Limiter:           env.limiter,
		Tokens:            env.tokens,
		Clock:             env.clock,
		Dispatcher:        dispatcher,
	})
	env.carts = NewCartService(env.store.Carts(), env.store.Products())
	env.orders = NewOrderService(OrderDependencies{
		OrderRepo:  env.store.Orders(),
		Clock:      env.clock,
		Dispatcher: dispatcher,
	})
	env.catalog = NewCatalogService(env.store.Products())
	env.users = NewUserService(env.store.Users())
	return env
}

func (env *testEnv) product(t *testing.T, name string, price int64, qty int) *domain.Product {
	t.Helper()
	p, err := env.catalog.Create(context.Background(), ProductInput{
		Name:          name,
		SKU:           name + "-sku",
		Price:         price,
		Quantity:      qty,
		TrackQuantity: true,
		IsActive:      true,
	})
	require.NoError(t, err)
	return p
}

// verifiedUser walks a phone through send and verify and returns the account.
func (env *testEnv) verifiedUser(t *testing.T, phone string) *domain.User {
	t.Helper()
	ctx := context.Background()
	issue, err := env.auth.SendOTP(ctx, phone)
	require.NoError(t, err)
	result, err := env.auth.VerifyOTP(ctx, phone, issue.Code)
	require.NoError(t, err)
	return result.User
}

// registeredUser returns a verified account with a completed profile.
func (env *testEnv) registeredUser(t *testing.T, phone, email string) *domain.User {
	t.Helper()
	user := env.verifiedUser(t, phone)
	user, err := env.auth.CompleteRegistration(context.Background(), user.ID, RegistrationInput{
		Name:     "Asha",
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user
}
