package service

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	taxRate               = decimal.NewFromFloat(0.15)
	freeShippingThreshold = decimal.NewFromInt(1000)
	flatShipping          = decimal.NewFromInt(100)
)

// Totals are the four server-computed money fields of an order
type Totals struct {
	Items    float64
	Tax      float64
	Shipping float64
	Total    float64
}

// ComputeTotals prices order lines: 15% tax on the subtotal, and a flat 100
// shipping unless the subtotal is strictly above 1000.
func ComputeTotals(items []domain.OrderItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(taxRate)

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Items:    subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    subtotal.Add(tax).Add(shipping).InexactFloat64(),
	}
}

// Apply copies the totals onto an order
func (t Totals) Apply(order *domain.Order) {
	order.ItemsPrice = t.Items
	order.TaxPrice = t.Tax
	order.ShippingPrice = t.Shipping
	order.TotalPrice = t.Total
}
