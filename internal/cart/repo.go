package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/cart"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// BySessionID returns nil when no cart exists for the session.
func (r *Repo) BySessionID(ctx context.Context, sessionCartID string) (*cart.Cart, error) {
	return r.load(ctx, `
		SELECT id, user_id, session_cart_id FROM carts WHERE session_cart_id = $1
	`, sessionCartID)
}

// ByUserID returns the user's most recently touched cart, or nil.
func (r *Repo) ByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	return r.load(ctx, `
		SELECT id, user_id, session_cart_id FROM carts
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, userID)
}

func (r *Repo) load(ctx context.Context, q string, arg any) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.QueryRow(ctx, q, arg).Scan(&c.ID, &c.UserID, &c.SessionCartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, slug, image, qty, price
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []cart.CartItem{}
	for rows.Next() {
		var it cart.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Slug, &it.Image, &it.Qty, &it.Price); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *Repo) Create(ctx context.Context, sessionCartID string, userID *uuid.UUID) (*cart.Cart, error) {
	c := cart.Cart{SessionCartID: sessionCartID, UserID: userID, Items: []cart.CartItem{}}
	err := r.db.QueryRow(ctx, `
		INSERT INTO carts (session_cart_id, user_id)
		VALUES ($1, $2)
		RETURNING id
	`, sessionCartID, userID).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) LinkUser(ctx context.Context, cartID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE carts SET user_id = $2, updated_at = now()
		WHERE id = $1
	`, cartID, userID)
	return err
}

// PutItem inserts the line or overwrites its quantity and price snapshot.
func (r *Repo) PutItem(ctx context.Context, cartID uuid.UUID, it cart.CartItem) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, name, slug, image, qty, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7::numeric)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET qty = EXCLUDED.qty, price = EXCLUDED.price
	`, cartID, it.ProductID, it.Name, it.Slug, it.Image, it.Qty, it.Price.String()); err != nil {
		return err
	}
	if err := touch(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID); err != nil {
		return err
	}
	if err := touch(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func touch(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}
