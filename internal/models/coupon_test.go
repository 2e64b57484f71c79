package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCouponCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"", true},
		{"SAVE10", true},
		{"SEVEN77", true},
		{"EIGHT888", false},
		{"  EIGHT888  ", false},
		{"WELCOME2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateCouponCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCouponCodeTooShort)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCouponValidate(t *testing.T) {
	valid := Coupon{Code: "FESTIVE10", DiscountType: DiscountPercentage, Value: 10}
	require.NoError(t, valid.Validate())

	short := valid
	short.Code = "FEST10"
	assert.ErrorIs(t, short.Validate(), ErrCouponCodeTooShort)

	badType := valid
	badType.DiscountType = "bogo"
	err := badType.Validate()
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details[0], "discountType")

	tooMuch := valid
	tooMuch.Value = 150
	assert.ErrorIs(t, tooMuch.Validate(), ErrValidation)

	fixed := Coupon{Code: "FLAT500OFF", DiscountType: DiscountFixed, Value: 500}
	assert.NoError(t, fixed.Validate())
}

func TestCouponDiscountFor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	pct := Coupon{Code: "PERCENT20", DiscountType: DiscountPercentage, Value: 20}
	assert.Equal(t, 40.0, pct.DiscountFor(200, now))

	fixed := Coupon{Code: "FLATFIFTY", DiscountType: DiscountFixed, Value: 50}
	assert.Equal(t, 30.0, fixed.DiscountFor(30, now), "fixed discount is capped at subtotal")

	expired := pct
	expired.ExpiresAt = &past
	assert.Zero(t, expired.DiscountFor(200, now))

	live := pct
	live.ExpiresAt = &future
	assert.Equal(t, 40.0, live.DiscountFor(200, now))

	minOrder := fixed
	minOrder.MinOrder = 500
	assert.Zero(t, minOrder.DiscountFor(499, now))
}

func TestPriceCart(t *testing.T) {
	items := []CartItem{
		{ID: "i1", Product: ProductRef{ID: "p1"}, Quantity: 2, Price: 499.5},
		{ID: "i2", Product: ProductRef{ID: "p2"}, Quantity: 1, Price: 1},
	}
	coupon := &Coupon{Code: "TENPERCENT", DiscountType: DiscountPercentage, Value: 10}

	totals := PriceCart(items, coupon, time.Now())
	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 1000.0, totals.Subtotal)
	assert.Equal(t, 100.0, totals.Discount)
	assert.Equal(t, 900.0, totals.Total)

	empty := PriceCart(nil, coupon, time.Now())
	assert.Equal(t, CartTotals{}, empty)
}
