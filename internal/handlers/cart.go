package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/state"
)

func cartView(store *state.Store) gin.H {
	snap := store.Cart.Snapshot()
	return gin.H{
		"cart":      snap.Data,
		"totals":    store.Cart.Totals(time.Now()),
		"isLoading": snap.IsLoading,
		"error":     snap.Error,
	}
}

func GetCart(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		if err := store.Cart.Fetch(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func AddToCart(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		var add models.CartAddition
		if !bindJSON(c, route, &add) {
			return
		}
		if add.Quantity == 0 {
			add.Quantity = 1
		}
		if err := store.Cart.Add(c.Request.Context(), add); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func UpdateCartItem(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/:itemId"
		defer handlePanic(c, route)

		var body struct {
			Quantity int `json:"quantity"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		if err := store.Cart.UpdateItem(c.Request.Context(), c.Param("itemId"), body.Quantity); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func RemoveCartItem(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:itemId"
		defer handlePanic(c, route)

		if err := store.Cart.RemoveItem(c.Request.Context(), c.Param("itemId")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func ClearCart(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := store.Cart.Clear(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func ApplyCoupon(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/coupon"
		defer handlePanic(c, route)

		var body struct {
			Code string `json:"code"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		if err := store.Cart.ApplyCoupon(c.Request.Context(), strings.TrimSpace(body.Code)); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

func RemoveCoupon(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/coupon"
		defer handlePanic(c, route)

		if err := store.Cart.RemoveCoupon(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cartView(store))
	}
}

type checkoutRequest struct {
	AddressID     string               `json:"addressId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// Checkout places an order from the loaded cart. Without an address id the default
// address is used.
func Checkout(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var body checkoutRequest
		if !bindJSON(c, route, &body) {
			return
		}
		if body.PaymentMethod == "" {
			body.PaymentMethod = models.PaymentCOD
		}

		ctx := c.Request.Context()
		if err := store.Cart.Fetch(ctx); err != nil {
			respondAPIError(c, route, err)
			return
		}
		if err := store.Addresses.Fetch(ctx); err != nil {
			respondAPIError(c, route, err)
			return
		}

		var (
			address models.Address
			err     error
		)
		if body.AddressID != "" {
			address, err = store.Addresses.Get(body.AddressID)
		} else {
			address, err = store.Addresses.Default()
		}
		if err != nil {
			respondAPIError(c, route, err)
			return
		}

		order, err := store.Checkout(ctx, state.CheckoutRequest{ShippingAddress: address, PaymentMethod: body.PaymentMethod})
		if err != nil && order == nil {
			respondAPIError(c, route, err)
			return
		}
		response := gin.H{"order": order}
		if err != nil {
			response["warning"] = err.Error()
		}
		c.JSON(http.StatusCreated, response)
	}
}
