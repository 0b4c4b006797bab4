package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/user"
)

type Order struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"user_id"`
	ShippingAddress user.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string               `json:"payment_method"`
	PaymentResult   *PaymentResult       `json:"payment_result,omitempty"`
	ItemsPrice      decimal.Decimal      `json:"items_price"`
	ShippingPrice   decimal.Decimal      `json:"shipping_price"`
	TaxPrice        decimal.Decimal      `json:"tax_price"`
	TotalPrice      decimal.Decimal      `json:"total_price"`
	IsPaid          bool                 `json:"is_paid"`
	PaidAt          *time.Time           `json:"paid_at,omitempty"`
	IsDelivered     bool                 `json:"is_delivered"`
	DeliveredAt     *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Items           []OrderItem          `json:"items,omitempty"`
	User            *Customer            `json:"user,omitempty"`
}

type OrderItem struct {
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PaymentResult is what the payment provider reported for the order. It is
// stored as JSONB.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address"`
	PricePaid    string `json:"pricePaid"`
}
