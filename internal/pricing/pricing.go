// Package pricing derives discounts and totals from product and order prices.
package pricing

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountPercent returns round((originalPrice-price)/originalPrice*100),
// or 0 when originalPrice is not positive.
func DiscountPercent(price, originalPrice decimal.Decimal) int {
	if !originalPrice.IsPositive() {
		return 0
	}
	pct := originalPrice.Sub(price).Div(originalPrice).Mul(hundred)
	return int(pct.Round(0).IntPart())
}

// DiscountAmount returns originalPrice-price without clamping.
func DiscountAmount(price, originalPrice decimal.Decimal) decimal.Decimal {
	return originalPrice.Sub(price)
}

// Summary is the priced view of a cart.
type Summary struct {
	ItemCount        int             `json:"itemCount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OriginalSubtotal decimal.Decimal `json:"originalSubtotal"`
	Savings          decimal.Decimal `json:"savings"`
}

// Summarize totals cart lines against their current product prices. Lines
// without a loaded product only count towards ItemCount.
func Summarize(lines []domain.CartLine) Summary {
	s := Summary{
		Subtotal:         decimal.Zero,
		OriginalSubtotal: decimal.Zero,
		Savings:          decimal.Zero,
	}
	for _, line := range lines {
		s.ItemCount += line.Quantity
		if line.Product == nil {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		s.Subtotal = s.Subtotal.Add(line.Product.Price.Mul(qty))
		s.OriginalSubtotal = s.OriginalSubtotal.Add(line.Product.OriginalPrice.Mul(qty))
		s.Savings = s.Savings.Add(DiscountAmount(line.Product.Price, line.Product.OriginalPrice).Mul(qty))
	}
	return s
}

// ItemsPrice sums price*quantity over order items.
func ItemsPrice(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
