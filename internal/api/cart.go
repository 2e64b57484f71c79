package api

import (
	"context"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

// Cart methods all return the full cart as the server now holds it.
type Cart struct {
	c *httpclient.Client
}

func (ct *Cart) Get(ctx context.Context) (*models.Cart, error) {
	return ct.call(ctx, "GET", "/cart", nil)
}

func (ct *Cart) Add(ctx context.Context, add models.CartAddition) (*models.Cart, error) {
	if err := models.Validate(add); err != nil {
		return nil, err
	}
	return ct.call(ctx, "POST", "/cart", add)
}

func (ct *Cart) UpdateItem(ctx context.Context, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, &models.ValidationError{Details: []string{"quantity must be at least 1"}}
	}
	return ct.call(ctx, "PUT", "/cart/"+itemID, map[string]int{"quantity": quantity})
}

func (ct *Cart) RemoveItem(ctx context.Context, itemID string) (*models.Cart, error) {
	return ct.call(ctx, "DELETE", "/cart/"+itemID, nil)
}

func (ct *Cart) Clear(ctx context.Context) (*models.Cart, error) {
	return ct.call(ctx, "DELETE", "/cart", nil)
}

// ApplyCoupon rejects codes shorter than models.MinCouponCodeLength without a request.
func (ct *Cart) ApplyCoupon(ctx context.Context, code string) (*models.Cart, error) {
	if err := models.ValidateCouponCode(code); err != nil {
		return nil, err
	}
	return ct.call(ctx, "POST", "/cart/coupon", map[string]string{"code": code})
}

func (ct *Cart) RemoveCoupon(ctx context.Context) (*models.Cart, error) {
	return ct.call(ctx, "DELETE", "/cart/coupon", nil)
}

func (ct *Cart) call(ctx context.Context, method, path string, body any) (*models.Cart, error) {
	var raw []byte
	if err := ct.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	cart, err := unwrapOne[models.Cart](raw, "cart", "data")
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{}
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}
