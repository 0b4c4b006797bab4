package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/order"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyPaid   = errors.New("order is already paid")
	ErrOrderNotPaid  = errors.New("order is not paid")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Create stores the order with its items and empties the cart it was placed
// from, all in one transaction.
func (r *Repo) Create(ctx context.Context, o order.Order, cartID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, shipping_address, payment_method,
			items_price, shipping_price, tax_price, total_price)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric)
		RETURNING id
	`, o.UserID, o.ShippingAddress, o.PaymentMethod,
		o.ItemsPrice.String(), o.ShippingPrice.String(), o.TaxPrice.String(), o.TotalPrice.String(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, qty, price, name, slug, image)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		`, id, it.ProductID, it.Qty, it.Price.String(), it.Name, it.Slug, it.Image); err != nil {
			return uuid.Nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return uuid.Nil, fmt.Errorf("clear cart: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

const orderColumns = `o.id, o.user_id, o.shipping_address, o.payment_method, o.payment_result,
	o.items_price, o.shipping_price, o.tax_price, o.total_price,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at,
	u.name, u.email`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var cust order.Customer
	err := row.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod, &o.PaymentResult,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
		&cust.Name, &cust.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	o.User = &cust
	return o, nil
}

// ByID returns the order with its items and customer.
func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id))
	if err != nil {
		return o, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, qty, price, name, slug, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY name ASC
	`, id)
	if err != nil {
		return o, err
	}
	defer rows.Close()

	o.Items = []order.OrderItem{}
	for rows.Next() {
		var it order.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Qty, &it.Price, &it.Name, &it.Slug, &it.Image); err != nil {
			return o, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListByUser returns one page of the user's orders, newest first, and the
// user's total order count.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]order.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collect(rows)
	return out, total, err
}

// ListAll is the admin view over every order.
func (r *Repo) ListAll(ctx context.Context, limit, offset int) ([]order.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collect(rows)
	return out, total, err
}

func collect(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()
	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) SetPaymentResult(ctx context.Context, id uuid.UUID, pr order.PaymentResult) error {
	ct, err := r.db.Exec(ctx, `UPDATE orders SET payment_result = $2 WHERE id = $1`, id, pr)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid flips the order to paid and takes the ordered quantities out of
// stock. The order row stays locked for the whole transaction so a second
// capture of the same order sees is_paid and fails with ErrAlreadyPaid.
// A nil result keeps the stored payment result.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, pr *order.PaymentResult) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var paid bool
	err = tx.QueryRow(ctx, `SELECT is_paid FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&paid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if paid {
		return ErrAlreadyPaid
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products p
		SET stock = p.stock - oi.qty
		FROM order_items oi
		WHERE oi.order_id = $1 AND p.id = oi.product_id
	`, id); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders
		SET is_paid = true, paid_at = now(), payment_result = COALESCE($2, payment_result)
		WHERE id = $1
	`, id, pr); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	var paid bool
	err := r.db.QueryRow(ctx, `SELECT is_paid FROM orders WHERE id = $1`, id).Scan(&paid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if !paid {
		return ErrOrderNotPaid
	}
	_, err = r.db.Exec(ctx, `UPDATE orders SET is_delivered = true, delivered_at = now() WHERE id = $1`, id)
	return err
}
