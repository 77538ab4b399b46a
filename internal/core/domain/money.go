package domain

import "github.com/shopspring/decimal"

// UnitPrice returns the joined product price, or zero when the join is absent
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(i.Product.Price)
}

// LineTotal returns unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums the line totals of items. It is a display value only;
// order totals always come from the server.
func Subtotal(items []CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum.Round(2)
}
