package api

import (
	"context"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

// Users is the admin view of accounts.
type Users struct {
	c *httpclient.Client
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	var raw []byte
	if err := u.c.Get(ctx, "/admin/users", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.User](raw, "users", "data")
}

func (u *Users) Get(ctx context.Context, id string) (*models.User, error) {
	return u.one(ctx, "GET", "/admin/users/"+id, nil)
}

func (u *Users) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	if err := models.Validate(update); err != nil {
		return nil, err
	}
	return u.one(ctx, "PUT", "/admin/users/"+id, update)
}

func (u *Users) SetStatus(ctx context.Context, id string, active bool) (*models.User, error) {
	return u.one(ctx, "PUT", "/admin/users/"+id+"/status", map[string]bool{"isActive": active})
}

func (u *Users) SetRole(ctx context.Context, id, role string) (*models.User, error) {
	if role == "" {
		return nil, &models.ValidationError{Details: []string{"role is required"}}
	}
	return u.one(ctx, "PUT", "/admin/users/"+id+"/role", map[string]string{"role": role})
}

func (u *Users) Delete(ctx context.Context, id string) error {
	return u.c.Delete(ctx, "/admin/users/"+id, nil)
}

func (u *Users) one(ctx context.Context, method, path string, body any) (*models.User, error) {
	var raw []byte
	if err := u.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.User](raw, "user", "data")
}
