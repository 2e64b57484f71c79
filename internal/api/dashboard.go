package api

import (
	"context"

	"golang.org/x/sync/errgroup"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Dashboard struct {
	c *httpclient.Client
}

func (d *Dashboard) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var raw []byte
	if err := d.c.Get(ctx, "/admin/dashboard", nil, &raw); err != nil {
		return nil, err
	}
	stats, err := unwrapOne[models.DashboardStats](raw, "stats", "data")
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &models.DashboardStats{}
	}
	return stats, nil
}

// Overview is the admin landing page: stats, orders and users.
type Overview struct {
	Stats  models.DashboardStats `json:"stats"`
	Orders []models.Order        `json:"orders"`
	Users  []models.User         `json:"users"`
}

// Overview issues the three reads concurrently, each attempted once. The first
// failure cancels the others and is returned.
func (d *Dashboard) Overview(ctx context.Context) (*Overview, error) {
	orders := &Orders{c: d.c}
	users := &Users{c: d.c}

	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := d.Stats(gctx)
		if err != nil {
			return err
		}
		out.Stats = *stats
		return nil
	})
	g.Go(func() error {
		list, err := orders.List(gctx)
		out.Orders = list
		return err
	})
	g.Go(func() error {
		list, err := users.List(gctx)
		out.Users = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
