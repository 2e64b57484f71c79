package state

import (
	"context"
	"time"

	"storefront/internal/api"
	"storefront/internal/models"
)

// keyCart is shared by every cart operation: each replaces the whole cart.
const keyCart = "cart"

type CartSlice struct {
	*slice[models.Cart]
	api *api.Cart
}

func NewCartSlice(cart *api.Cart) *CartSlice {
	return &CartSlice{
		slice: newSlice("cart", models.Cart{Items: []models.CartItem{}}),
		api:   cart,
	}
}

func (c *CartSlice) replace(data *models.Cart, cart *models.Cart) {
	if cart == nil {
		return
	}
	*data = *cart
}

func (c *CartSlice) Fetch(ctx context.Context) error {
	_, err := run(ctx, c.slice, keyCart, c.api.Get, c.replace)
	return err
}

func (c *CartSlice) Add(ctx context.Context, add models.CartAddition) error {
	_, err := run(ctx, c.slice, keyCart, func(ctx context.Context) (*models.Cart, error) {
		return c.api.Add(ctx, add)
	}, c.replace)
	return err
}

func (c *CartSlice) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	_, err := run(ctx, c.slice, keyCart, func(ctx context.Context) (*models.Cart, error) {
		return c.api.UpdateItem(ctx, itemID, quantity)
	}, c.replace)
	return err
}

func (c *CartSlice) RemoveItem(ctx context.Context, itemID string) error {
	_, err := run(ctx, c.slice, keyCart, func(ctx context.Context) (*models.Cart, error) {
		return c.api.RemoveItem(ctx, itemID)
	}, c.replace)
	return err
}

func (c *CartSlice) Clear(ctx context.Context) error {
	_, err := run(ctx, c.slice, keyCart, c.api.Clear, c.replace)
	return err
}

// ApplyCoupon fails without a request when the code is too short; the rejection is
// still recorded on the slice.
func (c *CartSlice) ApplyCoupon(ctx context.Context, code string) error {
	_, err := run(ctx, c.slice, keyCart, func(ctx context.Context) (*models.Cart, error) {
		return c.api.ApplyCoupon(ctx, code)
	}, c.replace)
	return err
}

func (c *CartSlice) RemoveCoupon(ctx context.Context) error {
	_, err := run(ctx, c.slice, keyCart, c.api.RemoveCoupon, c.replace)
	return err
}

// Totals is derived from the current items and coupon.
func (c *CartSlice) Totals(now time.Time) models.CartTotals {
	snap := c.Snapshot()
	return models.PriceCart(snap.Data.Items, snap.Data.Coupon, now)
}
