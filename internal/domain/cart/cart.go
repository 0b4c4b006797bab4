package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID            uuid.UUID       `json:"id"`
	UserID        *uuid.UUID      `json:"user_id,omitempty"`
	SessionCartID string          `json:"session_cart_id"`
	Items         []CartItem      `json:"items"`
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

var ErrSessionCartNotFound = errors.New("session cart not found")

// MergeResult tells the caller whether the visitor must be switched to the
// user's existing cart after sign-in.
type MergeResult struct {
	SwitchTo              string
	PreviousSessionCartID string
}
