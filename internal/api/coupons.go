package api

import (
	"context"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Coupons struct {
	c *httpclient.Client
}

func (cp *Coupons) List(ctx context.Context) ([]models.Coupon, error) {
	var raw []byte
	if err := cp.c.Get(ctx, "/admin/coupons", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Coupon](raw, "coupons", "data")
}

// Create validates the coupon before any request is made.
func (cp *Coupons) Create(ctx context.Context, coupon models.Coupon) (*models.Coupon, error) {
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	return cp.one(ctx, "POST", "/admin/coupons", coupon)
}

func (cp *Coupons) Update(ctx context.Context, id string, coupon models.Coupon) (*models.Coupon, error) {
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	return cp.one(ctx, "PUT", "/admin/coupons/"+id, coupon)
}

func (cp *Coupons) Delete(ctx context.Context, id string) error {
	return cp.c.Delete(ctx, "/admin/coupons/"+id, nil)
}

func (cp *Coupons) one(ctx context.Context, method, path string, body any) (*models.Coupon, error) {
	var raw []byte
	if err := cp.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Coupon](raw, "coupon", "data")
}
