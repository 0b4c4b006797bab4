package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/product"
	"storefront/internal/products"
)

type fakeStore struct {
	carts map[uuid.UUID]*cart.Cart
	links int
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[uuid.UUID]*cart.Cart{}}
}

func copyCart(c *cart.Cart) *cart.Cart {
	out := *c
	out.Items = append([]cart.CartItem{}, c.Items...)
	return &out
}

func (f *fakeStore) BySessionID(_ context.Context, sid string) (*cart.Cart, error) {
	for _, c := range f.carts {
		if c.SessionCartID == sid {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ByUserID(_ context.Context, uid uuid.UUID) (*cart.Cart, error) {
	for _, c := range f.carts {
		if c.UserID != nil && *c.UserID == uid {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, sid string, uid *uuid.UUID) (*cart.Cart, error) {
	c := &cart.Cart{ID: uuid.New(), SessionCartID: sid, UserID: uid, Items: []cart.CartItem{}}
	f.carts[c.ID] = c
	return copyCart(c), nil
}

func (f *fakeStore) LinkUser(_ context.Context, cartID, uid uuid.UUID) error {
	f.links++
	f.carts[cartID].UserID = &uid
	return nil
}

func (f *fakeStore) PutItem(_ context.Context, cartID uuid.UUID, it cart.CartItem) error {
	c := f.carts[cartID]
	if i := findItem(c.Items, it.ProductID); i >= 0 {
		c.Items[i] = it
		return nil
	}
	c.Items = append(c.Items, it)
	return nil
}

func (f *fakeStore) DeleteItem(_ context.Context, cartID, productID uuid.UUID) error {
	c := f.carts[cartID]
	if i := findItem(c.Items, productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	return nil
}

type fakeProducts map[uuid.UUID]product.Product

func (f fakeProducts) GetByID(_ context.Context, id uuid.UUID) (product.Product, error) {
	p, ok := f[id]
	if !ok {
		return product.Product{}, products.ErrNotFound
	}
	return p, nil
}

func newTestService(stock int) (*Service, *fakeStore, product.Product) {
	p := product.Product{
		ID:     uuid.New(),
		Name:   "Polo Shirt",
		Slug:   "polo-shirt",
		Images: []string{"/images/p1.jpg"},
		Stock:  stock,
		Price:  decimal.RequireFromString("59.99"),
	}
	store := newFakeStore()
	return NewService(store, fakeProducts{p.ID: p}), store, p
}

func TestAddItemCreatesCartAndSnapshotsPrice(t *testing.T) {
	svc, store, p := newTestService(5)
	ctx := context.Background()

	c, msg, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if msg != "Polo Shirt added to cart" {
		t.Errorf("msg = %q", msg)
	}
	if len(store.carts) != 1 {
		t.Fatalf("carts = %d, want 1", len(store.carts))
	}
	if len(c.Items) != 1 || c.Items[0].Image != "/images/p1.jpg" || !c.Items[0].Price.Equal(p.Price) {
		t.Fatalf("unexpected items: %+v", c.Items)
	}
	if !c.ShippingPrice.Equal(decimal.NewFromInt(10)) {
		t.Errorf("shipping = %s, want 10", c.ShippingPrice)
	}

	c, msg, err = svc.AddItem(ctx, "sess-1", nil, p.ID, 1)
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if msg != "Polo Shirt updated in cart" || c.Items[0].Qty != 2 {
		t.Errorf("msg = %q qty = %d", msg, c.Items[0].Qty)
	}
	if !c.ShippingPrice.IsZero() {
		t.Errorf("shipping over 100 = %s, want 0", c.ShippingPrice)
	}
}

func TestAddItemRespectsStock(t *testing.T) {
	svc, _, p := newTestService(1)
	ctx := context.Background()

	if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1); !errors.Is(err, ErrNotEnoughStock) {
		t.Fatalf("err = %v, want ErrNotEnoughStock", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, store, _ := newTestService(1)
	_, _, err := svc.AddItem(context.Background(), "sess-1", nil, uuid.New(), 1)
	if !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("err = %v, want products.ErrNotFound", err)
	}
	if len(store.carts) != 0 {
		t.Errorf("cart created for unknown product")
	}
}

func TestRemoveItemDecrementsThenDrops(t *testing.T) {
	svc, _, p := newTestService(5)
	ctx := context.Background()
	if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, _, err := svc.RemoveItem(ctx, "sess-1", nil, p.ID)
	if err != nil || c.Items[0].Qty != 1 {
		t.Fatalf("first remove: err=%v items=%+v", err, c.Items)
	}
	c, msg, err := svc.RemoveItem(ctx, "sess-1", nil, p.ID)
	if err != nil || len(c.Items) != 0 {
		t.Fatalf("second remove: err=%v items=%+v", err, c.Items)
	}
	if msg != "Polo Shirt removed from cart" {
		t.Errorf("msg = %q", msg)
	}
	if _, _, err := svc.RemoveItem(ctx, "sess-1", nil, p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestRemoveItemWithoutCart(t *testing.T) {
	svc, _, p := newTestService(5)
	if _, _, err := svc.RemoveItem(context.Background(), "nobody", nil, p.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("err = %v, want ErrCartNotFound", err)
	}
}

func TestGetMyCartPrefersUserCart(t *testing.T) {
	svc, store, p := newTestService(5)
	ctx := context.Background()
	uid := uuid.New()

	userCart, _ := store.Create(ctx, "user-sess", &uid)
	_ = store.PutItem(ctx, userCart.ID, cart.CartItem{ProductID: p.ID, Qty: 3, Price: p.Price})
	_, _ = store.Create(ctx, "anon-sess", nil)

	c, err := svc.GetMyCart(ctx, "anon-sess", &uid)
	if err != nil {
		t.Fatalf("GetMyCart: %v", err)
	}
	if c.ID != userCart.ID {
		t.Fatalf("got cart %s, want user cart %s", c.ID, userCart.ID)
	}
	if !c.ItemsPrice.Equal(decimal.RequireFromString("179.97")) {
		t.Errorf("items price = %s", c.ItemsPrice)
	}
}

func TestGetMyCartHidesForeignCart(t *testing.T) {
	svc, store, _ := newTestService(5)
	ctx := context.Background()
	owner := uuid.New()
	_, _ = store.Create(ctx, "sess-1", &owner)

	c, err := svc.GetMyCart(ctx, "sess-1", nil)
	if err != nil {
		t.Fatalf("GetMyCart: %v", err)
	}
	if !c.IsEmpty() || c.ID != uuid.Nil {
		t.Errorf("foreign cart leaked: %+v", c)
	}
}

func TestMergeSessionCart(t *testing.T) {
	ctx := context.Background()

	t.Run("missing session id", func(t *testing.T) {
		svc, _, _ := newTestService(1)
		if _, err := svc.MergeSessionCart(ctx, "", uuid.New()); !errors.Is(err, cart.ErrSessionCartNotFound) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("links anonymous cart", func(t *testing.T) {
		svc, store, _ := newTestService(1)
		uid := uuid.New()
		anon, _ := store.Create(ctx, "sess-1", nil)

		res, err := svc.MergeSessionCart(ctx, "sess-1", uid)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if res.SwitchTo != "" {
			t.Errorf("unexpected switch to %q", res.SwitchTo)
		}
		if got := store.carts[anon.ID].UserID; got == nil || *got != uid {
			t.Errorf("cart not linked: %v", got)
		}
	})

	t.Run("switches to existing user cart", func(t *testing.T) {
		svc, store, _ := newTestService(1)
		uid := uuid.New()
		_, _ = store.Create(ctx, "user-sess", &uid)
		anon, _ := store.Create(ctx, "sess-1", nil)

		res, err := svc.MergeSessionCart(ctx, "sess-1", uid)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if res.SwitchTo != "user-sess" || res.PreviousSessionCartID != "sess-1" {
			t.Errorf("result = %+v", res)
		}
		if store.carts[anon.ID].UserID != nil || store.links != 0 {
			t.Errorf("anonymous cart should stay unlinked")
		}
	})

	t.Run("no session cart", func(t *testing.T) {
		svc, store, _ := newTestService(1)
		res, err := svc.MergeSessionCart(ctx, "sess-1", uuid.New())
		if err != nil || res != (cart.MergeResult{}) || store.links != 0 {
			t.Fatalf("res=%+v err=%v links=%d", res, err, store.links)
		}
	})
}

func TestUpdateQty(t *testing.T) {
	ctx := context.Background()

	t.Run("sets quantity and reprices", func(t *testing.T) {
		svc, store, p := newTestService(5)
		if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}

		c, err := svc.UpdateQty(ctx, "sess-1", nil, p.ID, 3)
		if err != nil {
			t.Fatalf("UpdateQty: %v", err)
		}
		if c.Items[0].Qty != 3 || !c.ItemsPrice.Equal(decimal.RequireFromString("179.97")) {
			t.Fatalf("qty = %d items price = %s", c.Items[0].Qty, c.ItemsPrice)
		}
		if !c.ShippingPrice.IsZero() {
			t.Errorf("shipping = %s, want 0", c.ShippingPrice)
		}
		for _, stored := range store.carts {
			if stored.Items[0].Qty != 3 {
				t.Errorf("stored qty = %d", stored.Items[0].Qty)
			}
		}
	})

	t.Run("above stock", func(t *testing.T) {
		svc, store, p := newTestService(2)
		if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if _, err := svc.UpdateQty(ctx, "sess-1", nil, p.ID, 3); !errors.Is(err, ErrNotEnoughStock) {
			t.Fatalf("err = %v, want ErrNotEnoughStock", err)
		}
		for _, stored := range store.carts {
			if stored.Items[0].Qty != 1 {
				t.Errorf("stored qty changed to %d", stored.Items[0].Qty)
			}
		}
	})

	t.Run("product not in cart", func(t *testing.T) {
		svc, _, p := newTestService(5)
		if _, _, err := svc.AddItem(ctx, "sess-1", nil, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if _, err := svc.UpdateQty(ctx, "sess-1", nil, uuid.New(), 1); !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("err = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("no cart", func(t *testing.T) {
		svc, _, p := newTestService(5)
		if _, err := svc.UpdateQty(ctx, "sess-1", nil, p.ID, 1); !errors.Is(err, ErrCartNotFound) {
			t.Fatalf("err = %v, want ErrCartNotFound", err)
		}
	})
}
