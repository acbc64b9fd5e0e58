// Package memory implements the repository interfaces on process memory. It backs
// the service when no Postgres DSN is configured and gives tests the same
// uniqueness, conditional-decrement and all-or-nothing checkout semantics as the
// Postgres implementation. A single mutex serializes every operation.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

// Store holds every collection.
type Store struct {
	mu    sync.Mutex
	clock clock.Clock

	users     map[string]*domain.User
	userOrder []string
	phones    map[string]string
	emails    map[string]string

	resets      map[string]*domain.PasswordResetToken
	resetByHash map[string]string

	products     map[string]*domain.Product
	productOrder []string

	carts map[string]*domain.Cart

	orders     map[string]*domain.Order
	orderOrder []string
}

// New returns an empty store.
func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real()
	}
	return &Store{
		clock:       clk,
		users:       make(map[string]*domain.User),
		phones:      make(map[string]string),
		emails:      make(map[string]string),
		resets:      make(map[string]*domain.PasswordResetToken),
		resetByHash: make(map[string]string),
		products:    make(map[string]*domain.Product),
		carts:       make(map[string]*domain.Cart),
		orders:      make(map[string]*domain.Order),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userStore{s: s} }

// PasswordResets returns the reset token repository view.
func (s *Store) PasswordResets() repository.PasswordResetRepository { return &resetStore{s: s} }

// Products returns the product repository view.
func (s *Store) Products() repository.ProductRepository { return &productStore{s: s} }

// Carts returns the cart repository view.
func (s *Store) Carts() repository.CartRepository { return &cartStore{s: s} }

// Orders returns the order repository view.
func (s *Store) Orders() repository.OrderRepository { return &orderStore{s: s} }

func newID() string {
	return uuid.NewString()
}

// page returns the window [offset, offset+limit) of ids in newest-first order.
func page(ids []string, limit, offset int) []string {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	out := make([]string, 0, limit)
	for i := len(ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, ids[i])
	}
	return out
}
