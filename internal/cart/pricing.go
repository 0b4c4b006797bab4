package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain/cart"
)

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.RequireFromString("0.15")
)

// Price fills in the cart's price breakdown from its items. Shipping is free
// above 100 and tax is 15% of the items price. An empty cart costs nothing.
func Price(c *cart.Cart) {
	items := decimal.Zero
	for _, it := range c.Items {
		items = items.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	items = items.Round(2)

	shipping := flatShipping
	if items.GreaterThan(freeShippingOver) || len(c.Items) == 0 {
		shipping = decimal.Zero
	}
	tax := items.Mul(taxRate).Round(2)

	c.ItemsPrice = items
	c.ShippingPrice = shipping
	c.TaxPrice = tax
	c.TotalPrice = items.Add(shipping).Add(tax).Round(2)
}
