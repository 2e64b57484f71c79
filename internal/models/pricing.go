package models

import (
	"math"
	"time"
)

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func LineTotal(item CartItem) float64 {
	return roundCents(item.Price * float64(item.Quantity))
}

// PriceCart derives display totals from the server's cart. The server stays
// authoritative for what is charged.
func PriceCart(items []CartItem, coupon *Coupon, now time.Time) CartTotals {
	totals := CartTotals{}
	for _, item := range items {
		totals.ItemCount += item.Quantity
		totals.Subtotal += LineTotal(item)
	}
	totals.Subtotal = roundCents(totals.Subtotal)
	if coupon != nil {
		totals.Discount = coupon.DiscountFor(totals.Subtotal, now)
	}
	totals.Total = roundCents(totals.Subtotal - totals.Discount)
	return totals
}
