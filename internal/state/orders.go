package state

import (
	"context"
	"slices"

	"storefront/internal/api"
	"storefront/internal/models"
)

type OrderSlice struct {
	*slice[[]models.Order]
	api *api.Orders
}

func NewOrderSlice(orders *api.Orders) *OrderSlice {
	return &OrderSlice{
		slice: newSlice("orders", []models.Order{}),
		api:   orders,
	}
}

func orderID(o models.Order) string { return o.ID }

func (o *OrderSlice) Fetch(ctx context.Context) error {
	_, err := run(ctx, o.slice, keyList, o.api.List, func(data *[]models.Order, list []models.Order) {
		*data = list
	})
	return err
}

func (o *OrderSlice) Create(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	return run(ctx, o.slice, "", func(ctx context.Context) (*models.Order, error) {
		return o.api.Create(ctx, order)
	}, func(data *[]models.Order, created *models.Order) {
		if created != nil {
			*data = append(slices.Clip(*data), *created)
		}
	})
}

func (o *OrderSlice) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return run(ctx, o.slice, "status:"+id, func(ctx context.Context) (*models.Order, error) {
		return o.api.UpdateStatus(ctx, id, status)
	}, func(data *[]models.Order, updated *models.Order) {
		if updated != nil {
			*data = replaceByID(*data, *updated, orderID)
		}
	})
}

func (o *OrderSlice) Delete(ctx context.Context, id string) error {
	_, err := run(ctx, o.slice, "delete:"+id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.api.Delete(ctx, id)
	}, func(data *[]models.Order, _ struct{}) {
		*data = removeByID(*data, id, orderID)
	})
	return err
}
