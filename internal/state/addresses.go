package state

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/models"
)

// keyDefault is shared by every SetDefault call: the newest choice wins.
const keyDefault = "default"

type AddressSlice struct {
	*slice[[]models.Address]
	api *api.Addresses
}

func NewAddressSlice(addresses *api.Addresses) *AddressSlice {
	return &AddressSlice{
		slice: newSlice("addresses", []models.Address{}),
		api:   addresses,
	}
}

func addressID(a models.Address) string { return a.ID }

// upsertAddress places rec in a copy of list. A default rec clears every other
// default, so at most one address is the default.
func upsertAddress(list []models.Address, rec models.Address) []models.Address {
	out := make([]models.Address, 0, len(list)+1)
	found := false
	for _, addr := range list {
		if addr.ID == rec.ID {
			addr = rec
			found = true
		} else if rec.IsDefault {
			addr.IsDefault = false
		}
		out = append(out, addr)
	}
	if !found {
		out = append(out, rec)
	}
	return out
}

func (a *AddressSlice) Fetch(ctx context.Context) error {
	_, err := run(ctx, a.slice, keyList, a.api.List, func(data *[]models.Address, list []models.Address) {
		*data = list
	})
	return err
}

func (a *AddressSlice) Add(ctx context.Context, addr models.Address) (*models.Address, error) {
	return run(ctx, a.slice, "", func(ctx context.Context) (*models.Address, error) {
		return a.api.Create(ctx, addr)
	}, func(data *[]models.Address, created *models.Address) {
		if created != nil {
			*data = upsertAddress(*data, *created)
		}
	})
}

func (a *AddressSlice) Update(ctx context.Context, id string, addr models.Address) (*models.Address, error) {
	return run(ctx, a.slice, "update:"+id, func(ctx context.Context) (*models.Address, error) {
		return a.api.Update(ctx, id, addr)
	}, func(data *[]models.Address, updated *models.Address) {
		if updated != nil {
			*data = upsertAddress(*data, *updated)
		}
	})
}

func (a *AddressSlice) Delete(ctx context.Context, id string) error {
	_, err := run(ctx, a.slice, "delete:"+id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Delete(ctx, id)
	}, func(data *[]models.Address, _ struct{}) {
		*data = removeByID(*data, id, addressID)
	})
	return err
}

// SetDefault clears isDefault on every other local address and sets it on id. The
// server answers with the target record only.
func (a *AddressSlice) SetDefault(ctx context.Context, id string) error {
	_, err := run(ctx, a.slice, keyDefault, func(ctx context.Context) (*models.Address, error) {
		return a.api.SetDefault(ctx, id)
	}, func(data *[]models.Address, updated *models.Address) {
		rec := models.Address{ID: id}
		for _, addr := range *data {
			if addr.ID == id {
				rec = addr
			}
		}
		if updated != nil && updated.ID == id {
			rec = *updated
		}
		rec.IsDefault = true
		*data = upsertAddress(*data, rec)
	})
	return err
}

// Get finds an address in local state.
func (a *AddressSlice) Get(id string) (models.Address, error) {
	for _, addr := range a.Snapshot().Data {
		if addr.ID == id {
			return addr, nil
		}
	}
	return models.Address{}, ErrNotFound
}

// Default returns the local default address.
func (a *AddressSlice) Default() (models.Address, error) {
	for _, addr := range a.Snapshot().Data {
		if addr.IsDefault {
			return addr, nil
		}
	}
	return models.Address{}, ErrNotFound
}
