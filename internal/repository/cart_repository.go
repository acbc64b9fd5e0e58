package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/domain"
)

// CartRepository persists one cart per user.
type CartRepository interface {
	// GetOrCreate returns the user's cart, inserting an empty one when absent.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem merges quantity into an existing line or appends a new one at price.
	AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error)
	// SetItemQuantity replaces a line's quantity. ErrNotFound when the line is absent.
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	// RemoveItem deletes a line. ErrNotFound when the line is absent.
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	// Clear empties the cart without deleting it.
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type cartRepository struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

// NewCartRepository instantiates repository. clk stamps lines added without a time.
func NewCartRepository(pool *pgxpool.Pool, clk clock.Clock) CartRepository {
	return &cartRepository{pool: pool, clock: clk}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func ensureCart(ctx context.Context, q querier, userID string) error {
	const query = `
        INSERT INTO carts (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := q.Exec(ctx, query, userID)
	return err
}

func loadCart(ctx context.Context, q querier, userID string) (*domain.Cart, error) {
	cart := domain.Cart{UserID: userID}
	if err := q.QueryRow(ctx, `SELECT created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}

	const itemsQuery = `
        SELECT ci.product_id, COALESCE(p.name, ''), ci.quantity, ci.price, ci.added_at
        FROM cart_items ci LEFT JOIN products p ON p.id = ci.product_id
        WHERE ci.user_id=$1
        ORDER BY ci.added_at, ci.product_id`
	rows, err := q.Query(ctx, itemsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.AddedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}

func touchCart(ctx context.Context, q querier, userID string) error {
	_, err := q.Exec(ctx, `UPDATE carts SET updated_at=NOW() WHERE user_id=$1`, userID)
	return err
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ensureCart(ctx, r.pool, userID); err != nil {
		return nil, err
	}
	return loadCart(ctx, r.pool, userID)
}

func (r *cartRepository) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	return r.inTx(ctx, userID, func(tx pgx.Tx) error {
		if err := ensureCart(ctx, tx, userID); err != nil {
			return err
		}
		addedAt := item.AddedAt
		if addedAt.IsZero() {
			addedAt = r.clock.Now()
		}
		const query = `
            INSERT INTO cart_items (user_id, product_id, quantity, price, added_at)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`
		_, err := tx.Exec(ctx, query, userID, item.ProductID, item.Quantity, item.Price, addedAt)
		return err
	})
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	return r.inTx(ctx, userID, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE cart_items SET quantity=$1 WHERE user_id=$2 AND product_id=$3`, quantity, userID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	return r.inTx(ctx, userID, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *cartRepository) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.inTx(ctx, userID, func(tx pgx.Tx) error {
		if err := ensureCart(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
		return err
	})
}

// inTx runs fn, bumps the cart timestamp and returns the reloaded cart, all in one transaction.
func (r *cartRepository) inTx(ctx context.Context, userID string, fn func(pgx.Tx) error) (*domain.Cart, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return nil, err
	}
	if err := touchCart(ctx, tx, userID); err != nil {
		return nil, err
	}
	cart, err := loadCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}
