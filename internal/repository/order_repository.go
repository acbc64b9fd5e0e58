package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// OrderRepository persists orders and performs checkout.
type OrderRepository interface {
	// Place validates and decrements stock for every line, snapshots names and prices,
	// reprices, inserts the order and clears the user's cart as one unit. Lines must
	// reference distinct products. Nothing is
	// written when any line fails; the error is *ErrProductNotFound or
	// *InsufficientStockError.
	Place(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, int, error)
	// UpdateFulfilment persists status, payment and delivery fields.
	UpdateFulfilment(ctx context.Context, order *domain.Order) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Place(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Lock rows in a stable order so two checkouts sharing products cannot deadlock.
	items := append([]domain.OrderItem(nil), order.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	for i := range items {
		if err := reserveStock(ctx, tx, &items[i]); err != nil {
			return err
		}
	}
	priced := make(map[string]domain.OrderItem, len(items))
	for _, item := range items {
		priced[item.ProductID] = item
	}
	for i := range order.Items {
		order.Items[i] = priced[order.Items[i].ProductID]
	}
	order.Reprice()

	const insertOrder = `
        INSERT INTO orders (user_id, status, payment_method, items_price, tax_price, shipping_price, total_price,
            ship_full_name, ship_phone, ship_street, ship_city, ship_state, ship_zip_code, ship_country)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertOrder,
		order.UserID,
		order.Status,
		order.PaymentMethod,
		order.ItemsPrice,
		order.TaxPrice,
		order.ShippingPrice,
		order.TotalPrice,
		order.ShippingAddress.FullName,
		order.ShippingAddress.Phone,
		order.ShippingAddress.Street,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.ZipCode,
		order.ShippingAddress.Country,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	const insertItem = `
        INSERT INTO order_items (order_id, position, product_id, name, quantity, price)
        VALUES ($1,$2,$3,$4,$5,$6)`
	for pos, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem, order.ID, pos, item.ProductID, item.Name, item.Quantity, item.Price); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, order.UserID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at=NOW() WHERE user_id=$1`, order.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// reserveStock decrements an active tracked product only when enough units remain and
// copies the product's current name and price onto the line.
func reserveStock(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error {
	const decrement = `
        UPDATE products
        SET stock_quantity = CASE WHEN track_quantity THEN stock_quantity - $2 ELSE stock_quantity END,
            updated_at = NOW()
        WHERE id=$1 AND is_active AND (NOT track_quantity OR stock_quantity >= $2)
        RETURNING name, price`
	err := tx.QueryRow(ctx, decrement, item.ProductID, item.Quantity).Scan(&item.Name, &item.Price)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var name string
	var available int
	var active bool
	err = tx.QueryRow(ctx, `SELECT name, stock_quantity, is_active FROM products WHERE id=$1`, item.ProductID).
		Scan(&name, &available, &active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return &ErrProductNotFound{ProductID: item.ProductID}
	}
	if err != nil {
		return err
	}
	return &InsufficientStockError{ProductID: item.ProductID, ProductName: name, Requested: item.Quantity, Available: available}
}

const orderColumns = `id, user_id, status, payment_method, items_price, tax_price, shipping_price, total_price,
        ship_full_name, ship_phone, ship_street, ship_city, ship_state, ship_zip_code, ship_country,
        is_paid, paid_at, payment_id, payment_status, payment_update_time, payment_email,
        is_delivered, delivered_at, tracking_number, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var payment domain.PaymentResult
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentMethod,
		&order.ItemsPrice,
		&order.TaxPrice,
		&order.ShippingPrice,
		&order.TotalPrice,
		&order.ShippingAddress.FullName,
		&order.ShippingAddress.Phone,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.State,
		&order.ShippingAddress.ZipCode,
		&order.ShippingAddress.Country,
		&order.IsPaid,
		&order.PaidAt,
		&payment.ID,
		&payment.Status,
		&payment.UpdateTime,
		&payment.EmailAddress,
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.TrackingNumber,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if order.IsPaid {
		order.PaymentResult = &payment
	}
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
		byID[order.ID] = order
		order.Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT order_id, product_id, name, quantity, price
        FROM order_items WHERE order_id = ANY($1::uuid[])
        ORDER BY order_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return err
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	return r.list(ctx, &userID, limit, offset)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]domain.Order, int, error) {
	return r.list(ctx, nil, limit, offset)
}

func (r *orderRepository) list(ctx context.Context, userID *string, limit, offset int) ([]domain.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE $1::uuid IS NULL OR user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders
        WHERE $1::uuid IS NULL OR user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ptrs []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		ptrs = append(ptrs, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	orders := make([]domain.Order, 0, len(ptrs))
	for _, order := range ptrs {
		orders = append(orders, *order)
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateFulfilment(ctx context.Context, order *domain.Order) error {
	var payment domain.PaymentResult
	if order.PaymentResult != nil {
		payment = *order.PaymentResult
	}
	const query = `
        UPDATE orders SET status=$1, is_paid=$2, paid_at=$3, payment_id=$4, payment_status=$5,
            payment_update_time=$6, payment_email=$7, is_delivered=$8, delivered_at=$9,
            tracking_number=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		order.Status,
		order.IsPaid,
		order.PaidAt,
		payment.ID,
		payment.Status,
		payment.UpdateTime,
		payment.EmailAddress,
		order.IsDelivered,
		order.DeliveredAt,
		order.TrackingNumber,
		order.ID,
	).Scan(&order.UpdatedAt)
}
