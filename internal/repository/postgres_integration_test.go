package repository_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/persistence"
	"github.com/spec-kit/storefront-api/internal/repository"
)

// These tests need a disposable database: TEST_POSTGRES_DSN=postgres://... go test ./internal/repository/
// Rows are keyed by random phones and SKUs so repeated runs do not collide.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	dir := filepath.Join("..", "..", persistence.DefaultMigrationsDir)
	require.NoError(t, persistence.RunMigrations(ctx, pool, dir, zap.NewNop()))
	return pool
}

func randomPhone() string {
	return fmt.Sprintf("9%09d", rand.Intn(1_000_000_000))
}

func pgProduct(t *testing.T, products repository.ProductRepository, qty int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:      "lamp",
		SKU:       "lamp-" + uuid.NewString(),
		Price:     3000,
		Inventory: domain.Inventory{Quantity: qty, TrackQuantity: true},
		IsActive:  true,
	}
	require.NoError(t, products.Create(context.Background(), p))
	return p
}

func pgVerifiedUser(t *testing.T, users repository.UserRepository) *domain.User {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	u, err := users.CreatePending(ctx, randomPhone(), "123456", now.Add(10*time.Minute))
	require.NoError(t, err)
	ok, err := users.ConsumeOTP(ctx, u.ID, "123456", now)
	require.NoError(t, err)
	require.True(t, ok)
	return u
}

func TestPostgresConsumeOTPSucceedsOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	now := time.Now().UTC()

	u, err := users.CreatePending(ctx, randomPhone(), "654321", now.Add(10*time.Minute))
	require.NoError(t, err)

	_, err = users.CreatePending(ctx, u.Phone, "111111", now.Add(10*time.Minute))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	var wg sync.WaitGroup
	results := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := users.ConsumeOTP(ctx, u.ID, "654321", now)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Nil(t, got.OTPCode)
}

func TestPostgresCompleteProfileAppliesOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	u := pgVerifiedUser(t, users)

	var wg sync.WaitGroup
	results := make(chan bool, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			profile := &domain.User{ID: u.ID, Name: "Asha", Email: fmt.Sprintf("%s-%d@example.com", u.Phone, i), PasswordHash: "hash"}
			ok, err := users.CompleteProfile(ctx, profile)
			assert.NoError(t, err)
			results <- ok
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRegistered())

	other := pgVerifiedUser(t, users)
	_, err = users.CompleteProfile(ctx, &domain.User{ID: other.ID, Name: "B", Email: got.Email, PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, users.SetPasswordHash(ctx, u.ID, "rotated"))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.PasswordHash)
	assert.Equal(t, "Asha", got.Name)
}

func TestPostgresPlaceOrder(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	products := repository.NewProductRepository(pool)
	carts := repository.NewCartRepository(pool, clock.Real())
	orders := repository.NewOrderRepository(pool)

	buyer := pgVerifiedUser(t, users)
	last := pgProduct(t, products, 1)
	plenty := pgProduct(t, products, 10)

	_, err := carts.AddItem(ctx, buyer.ID, domain.CartItem{ProductID: plenty.ID, Quantity: 1, Price: plenty.Price})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = orders.Place(ctx, &domain.Order{UserID: buyer.ID, Status: domain.OrderStatusPending, PaymentMethod: "cod",
				Items: []domain.OrderItem{{ProductID: plenty.ID, Quantity: 1}, {ProductID: last.ID, Quantity: 1}}})
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		var stockErr *repository.InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "got %v", err)
		assert.Equal(t, last.ID, stockErr.ProductID)
	}
	assert.Equal(t, 1, placed)

	got, err := products.GetByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Inventory.Quantity)
	got, err = products.GetByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory.Quantity)

	cart, err := carts.GetOrCreate(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	plenty.IsActive = false
	require.NoError(t, products.Update(ctx, plenty))
	err = orders.Place(ctx, &domain.Order{UserID: buyer.ID, Status: domain.OrderStatusPending, PaymentMethod: "cod",
		Items: []domain.OrderItem{{ProductID: plenty.ID, Quantity: 1}}})
	var missing *repository.ErrProductNotFound
	require.True(t, errors.As(err, &missing))
	got, err = products.GetByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Inventory.Quantity)
}
