// Package api maps each backend operation to exactly one HTTP call and unwraps the
// response body into the canonical model shape.
package api

import (
	"storefront/internal/httpclient"
)

// API groups the resource modules over one shared client.
type API struct {
	Auth         *Auth
	Products     *Products
	Cart         *Cart
	Addresses    *Addresses
	Orders       *Orders
	Users        *Users
	Coupons      *Coupons
	Videos       *Videos
	Subscription *Subscription
	Dashboard    *Dashboard
}

func New(c *httpclient.Client) *API {
	return &API{
		Auth:         &Auth{c: c},
		Products:     &Products{c: c},
		Cart:         &Cart{c: c},
		Addresses:    &Addresses{c: c},
		Orders:       &Orders{c: c},
		Users:        &Users{c: c},
		Coupons:      &Coupons{c: c},
		Videos:       &Videos{c: c},
		Subscription: &Subscription{c: c},
		Dashboard:    &Dashboard{c: c},
	}
}
