package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/product"
)

var (
	ErrNotEnoughStock = errors.New("not enough stock")
	ErrCartNotFound   = errors.New("cart not found")
	ErrItemNotFound   = errors.New("item not found in cart")
	ErrForeignCart    = errors.New("session cart belongs to another user")
)

type Store interface {
	BySessionID(ctx context.Context, sessionCartID string) (*cart.Cart, error)
	ByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	Create(ctx context.Context, sessionCartID string, userID *uuid.UUID) (*cart.Cart, error)
	LinkUser(ctx context.Context, cartID, userID uuid.UUID) error
	PutItem(ctx context.Context, cartID uuid.UUID, it cart.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
}

type Products interface {
	GetByID(ctx context.Context, id uuid.UUID) (product.Product, error)
}

type Service struct {
	store    Store
	products Products
}

func NewService(store Store, products Products) *Service {
	return &Service{store: store, products: products}
}

// resolve finds the visitor's cart. A signed-in user's own cart wins over the
// session cart. With create set, a missing cart is created.
func (s *Service) resolve(ctx context.Context, sessionCartID string, userID *uuid.UUID, create bool) (*cart.Cart, error) {
	if userID != nil {
		c, err := s.store.ByUserID(ctx, *userID)
		if err != nil || c != nil {
			return c, err
		}
	}

	if sessionCartID == "" {
		return nil, cart.ErrSessionCartNotFound
	}
	c, err := s.store.BySessionID(ctx, sessionCartID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		switch {
		case c.UserID == nil && userID != nil:
			if err := s.store.LinkUser(ctx, c.ID, *userID); err != nil {
				return nil, err
			}
			c.UserID = userID
		case c.UserID != nil && (userID == nil || *c.UserID != *userID):
			return nil, ErrForeignCart
		}
		return c, nil
	}

	if !create {
		return nil, nil
	}
	return s.store.Create(ctx, sessionCartID, userID)
}

// GetMyCart returns the visitor's cart, priced. A visitor without a cart gets
// an empty one that is not persisted.
func (s *Service) GetMyCart(ctx context.Context, sessionCartID string, userID *uuid.UUID) (cart.Cart, error) {
	c, err := s.resolve(ctx, sessionCartID, userID, false)
	if errors.Is(err, ErrForeignCart) {
		c, err = nil, nil
	}
	if err != nil {
		return cart.Cart{}, err
	}
	if c == nil {
		c = &cart.Cart{SessionCartID: sessionCartID, UserID: userID, Items: []cart.CartItem{}}
	}
	Price(c)
	return *c, nil
}

// AddItem adds qty units of a product, creating the cart on first use. The
// resulting quantity may not exceed the product's stock.
func (s *Service) AddItem(ctx context.Context, sessionCartID string, userID *uuid.UUID, productID uuid.UUID, qty int) (cart.Cart, string, error) {
	if qty <= 0 {
		qty = 1
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return cart.Cart{}, "", err
	}

	c, err := s.resolve(ctx, sessionCartID, userID, true)
	if err != nil {
		return cart.Cart{}, "", err
	}

	idx := findItem(c.Items, productID)
	newQty := qty
	if idx >= 0 {
		newQty += c.Items[idx].Qty
	}
	if p.Stock < newQty {
		return cart.Cart{}, "", ErrNotEnoughStock
	}

	it := cart.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.Image(),
		Qty:       newQty,
		Price:     p.Price,
	}
	if err := s.store.PutItem(ctx, c.ID, it); err != nil {
		return cart.Cart{}, "", fmt.Errorf("put cart item: %w", err)
	}

	msg := fmt.Sprintf("%s added to cart", p.Name)
	if idx >= 0 {
		c.Items[idx] = it
		msg = fmt.Sprintf("%s updated in cart", p.Name)
	} else {
		c.Items = append(c.Items, it)
	}
	Price(c)
	return *c, msg, nil
}

// UpdateQty sets the quantity of a line already in the cart.
func (s *Service) UpdateQty(ctx context.Context, sessionCartID string, userID *uuid.UUID, productID uuid.UUID, qty int) (cart.Cart, error) {
	c, err := s.existing(ctx, sessionCartID, userID)
	if err != nil {
		return cart.Cart{}, err
	}
	idx := findItem(c.Items, productID)
	if idx < 0 {
		return cart.Cart{}, ErrItemNotFound
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return cart.Cart{}, err
	}
	if p.Stock < qty {
		return cart.Cart{}, ErrNotEnoughStock
	}

	it := c.Items[idx]
	it.Qty = qty
	if err := s.store.PutItem(ctx, c.ID, it); err != nil {
		return cart.Cart{}, err
	}
	c.Items[idx] = it
	Price(c)
	return *c, nil
}

// RemoveItem takes one unit of the product out of the cart and drops the line
// when it reaches zero.
func (s *Service) RemoveItem(ctx context.Context, sessionCartID string, userID *uuid.UUID, productID uuid.UUID) (cart.Cart, string, error) {
	c, err := s.existing(ctx, sessionCartID, userID)
	if err != nil {
		return cart.Cart{}, "", err
	}
	idx := findItem(c.Items, productID)
	if idx < 0 {
		return cart.Cart{}, "", ErrItemNotFound
	}

	it := c.Items[idx]
	if it.Qty <= 1 {
		if err := s.store.DeleteItem(ctx, c.ID, productID); err != nil {
			return cart.Cart{}, "", err
		}
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		it.Qty--
		if err := s.store.PutItem(ctx, c.ID, it); err != nil {
			return cart.Cart{}, "", err
		}
		c.Items[idx] = it
	}
	Price(c)
	return *c, fmt.Sprintf("%s removed from cart", it.Name), nil
}

func (s *Service) existing(ctx context.Context, sessionCartID string, userID *uuid.UUID) (*cart.Cart, error) {
	c, err := s.resolve(ctx, sessionCartID, userID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}
	return c, nil
}

// MergeSessionCart runs at sign-in. An anonymous session cart is handed to the
// user unless the user already owns a cart, in which case the caller must
// switch the visitor to that cart's session id.
func (s *Service) MergeSessionCart(ctx context.Context, sessionCartID string, userID uuid.UUID) (cart.MergeResult, error) {
	if sessionCartID == "" {
		return cart.MergeResult{}, cart.ErrSessionCartNotFound
	}
	sc, err := s.store.BySessionID(ctx, sessionCartID)
	if err != nil {
		return cart.MergeResult{}, err
	}
	if sc == nil || sc.UserID != nil {
		return cart.MergeResult{}, nil
	}

	uc, err := s.store.ByUserID(ctx, userID)
	if err != nil {
		return cart.MergeResult{}, err
	}
	if uc != nil {
		return cart.MergeResult{SwitchTo: uc.SessionCartID, PreviousSessionCartID: sessionCartID}, nil
	}

	if err := s.store.LinkUser(ctx, sc.ID, userID); err != nil {
		return cart.MergeResult{}, fmt.Errorf("link session cart: %w", err)
	}
	return cart.MergeResult{}, nil
}

func findItem(items []cart.CartItem, productID uuid.UUID) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
