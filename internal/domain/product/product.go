package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	Rating      decimal.Decimal `json:"rating"`
	NumReviews  int             `json:"num_reviews"`
	IsFeatured  bool            `json:"is_featured"`
	Banner      *string         `json:"banner,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Image returns the first product image or an empty string.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
