package trades

import "github.com/shopspring/decimal"

// buyPosition folds a buy fill into a position: quantities add and the
// average price is the quantity-weighted mean, rounded to cents.
func buyPosition(heldQty, heldAvg, qty, price decimal.Decimal) (newQty, newAvg decimal.Decimal) {
	newQty = heldQty.Add(qty)
	cost := heldQty.Mul(heldAvg).Add(qty.Mul(price))
	newAvg = cost.Div(newQty).Round(2)
	return newQty, newAvg
}

// sellPosition reduces quantity and never rewrites the average price.
func sellPosition(heldQty, qty decimal.Decimal) decimal.Decimal {
	return heldQty.Sub(qty)
}
