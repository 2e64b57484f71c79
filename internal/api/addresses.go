package api

import (
	"context"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Addresses struct {
	c *httpclient.Client
}

func (a *Addresses) List(ctx context.Context) ([]models.Address, error) {
	var raw []byte
	if err := a.c.Get(ctx, "/api/addresses", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Address](raw, "addresses", "data")
}

func (a *Addresses) Create(ctx context.Context, addr models.Address) (*models.Address, error) {
	if err := models.Validate(addr); err != nil {
		return nil, err
	}
	return a.one(ctx, "POST", "/api/addresses", addr)
}

func (a *Addresses) Update(ctx context.Context, id string, addr models.Address) (*models.Address, error) {
	if err := models.Validate(addr); err != nil {
		return nil, err
	}
	return a.one(ctx, "PUT", "/api/addresses/"+id, addr)
}

func (a *Addresses) Delete(ctx context.Context, id string) error {
	return a.c.Delete(ctx, "/api/addresses/"+id, nil)
}

// SetDefault returns only the updated record; the caller repairs the other defaults.
func (a *Addresses) SetDefault(ctx context.Context, id string) (*models.Address, error) {
	return a.one(ctx, "PATCH", "/api/addresses/"+id+"/default", nil)
}

func (a *Addresses) one(ctx context.Context, method, path string, body any) (*models.Address, error) {
	var raw []byte
	if err := a.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Address](raw, "address", "data")
}
