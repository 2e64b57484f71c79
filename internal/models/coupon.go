package models

import (
	"fmt"
	"strings"
	"time"
)

const MinCouponCodeLength = 8

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ErrCouponCodeTooShort is returned before any request is made.
var ErrCouponCodeTooShort = fmt.Errorf("coupon code must be at least %d characters", MinCouponCodeLength)

type Coupon struct {
	ID           string       `json:"id,omitempty"`
	Code         string       `json:"code" validate:"required"`
	DiscountType DiscountType `json:"discountType" validate:"oneof=percentage fixed"`
	Value        float64      `json:"value" validate:"gt=0"`
	MinOrder     float64      `json:"minOrder,omitempty" validate:"gte=0"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
	IsActive     bool         `json:"isActive"`
}

// ValidateCouponCode enforces the client-side code length. Exactly eight characters pass.
func ValidateCouponCode(code string) error {
	if err := validate.Var(strings.TrimSpace(code), fmt.Sprintf("min=%d", MinCouponCodeLength)); err != nil {
		return ErrCouponCodeTooShort
	}
	return nil
}

// Validate runs the code check first, then the struct rules.
func (c Coupon) Validate() error {
	if err := ValidateCouponCode(c.Code); err != nil {
		return err
	}
	if err := Validate(c); err != nil {
		return err
	}
	if c.DiscountType == DiscountPercentage && c.Value > 100 {
		return &ValidationError{Details: []string{"value must be at most 100 for percentage coupons"}}
	}
	return nil
}

func (c Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// DiscountFor returns the discount on subtotal. Expired coupons and subtotals below
// MinOrder get nothing; a fixed discount never exceeds the subtotal.
func (c Coupon) DiscountFor(subtotal float64, now time.Time) float64 {
	if subtotal <= 0 || c.Expired(now) || subtotal < c.MinOrder {
		return 0
	}
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal * c.Value / 100
	case DiscountFixed:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return roundCents(discount)
}
