package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/api"
	"storefront/internal/models"
	"storefront/internal/session"
)

var ErrEmptyCart = errors.New("cart is empty")

// Store is the whole client state tree.
type Store struct {
	Auth      *AuthSlice
	Cart      *CartSlice
	Products  *ProductSlice
	Addresses *AddressSlice
	Orders    *OrderSlice

	now func() time.Time
}

// New builds every slice. The auth slice hydrates from sess before New returns.
func New(ctx context.Context, a *api.API, sess *session.Store) *Store {
	return &Store{
		Auth:      NewAuthSlice(ctx, a.Auth, sess),
		Cart:      NewCartSlice(a.Cart),
		Products:  NewProductSlice(a.Products),
		Addresses: NewAddressSlice(a.Addresses),
		Orders:    NewOrderSlice(a.Orders),
		now:       time.Now,
	}
}

// ResetUserData drops the per-user slices after a logout. In-flight results for them
// are ignored.
func (s *Store) ResetUserData() {
	s.Cart.reset()
	s.Addresses.reset()
	s.Orders.reset()
}

type CheckoutRequest struct {
	ShippingAddress models.Address
	PaymentMethod   models.PaymentMethod
}

// Checkout prices the cart, creates the order, then clears the cart. The two calls
// are independent: a failed clear leaves the order in place and is reported.
func (s *Store) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	cart := s.Cart.Snapshot().Data
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	totals := models.PriceCart(cart.Items, cart.Coupon, s.now())
	order := models.NewOrder{
		Items:           make([]models.OrderItem, 0, len(cart.Items)),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		Total:           totals.Total,
	}
	if cart.Coupon != nil && totals.Discount > 0 {
		order.CouponCode = cart.Coupon.Code
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			Product:  item.Product,
			Title:    item.Product.Title(),
			Quantity: item.Quantity,
			Price:    item.Price,
			Variant:  item.Variant,
		})
	}

	created, err := s.Orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.Cart.Clear(ctx); err != nil {
		return created, fmt.Errorf("order %s placed but clearing the cart failed: %w", created.ID, err)
	}
	return created, nil
}
