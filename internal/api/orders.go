package api

import (
	"context"
	"fmt"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Orders struct {
	c *httpclient.Client
}

func (o *Orders) List(ctx context.Context) ([]models.Order, error) {
	var raw []byte
	if err := o.c.Get(ctx, "/admin/orders", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Order](raw, "orders", "data")
}

func (o *Orders) Create(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	if err := models.Validate(order); err != nil {
		return nil, err
	}
	return o.one(ctx, "POST", "/admin/orders", order)
}

// UpdateStatus accepts any non-empty label; admin-extended statuses pass through.
func (o *Orders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if status == "" {
		return nil, &models.ValidationError{Details: []string{"status is required"}}
	}
	return o.one(ctx, "PUT", fmt.Sprintf("/admin/orders/%s/status", id), map[string]models.OrderStatus{"status": status})
}

func (o *Orders) Delete(ctx context.Context, id string) error {
	return o.c.Delete(ctx, "/admin/orders/"+id, nil)
}

func (o *Orders) one(ctx context.Context, method, path string, body any) (*models.Order, error) {
	var raw []byte
	if err := o.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Order](raw, "order", "data")
}
