package testutil

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

// cartJSON embeds the product document in every item, as a populated cart would.
func cartJSON(cart *models.Cart) gin.H {
	items := make([]gin.H, 0, len(cart.Items))
	for _, item := range cart.Items {
		entry := gin.H{
			"id":       item.ID,
			"quantity": item.Quantity,
			"price":    item.Price,
		}
		if item.Product.Product != nil {
			entry["product"] = item.Product.Product
		} else {
			entry["product"] = item.Product.ID
		}
		if item.Variant != nil {
			entry["variant"] = item.Variant
		}
		items = append(items, entry)
	}
	out := gin.H{"items": items}
	if cart.Coupon != nil {
		out["coupon"] = cart.Coupon
	}
	return gin.H{"cart": out}
}

func (b *Backend) getCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, cartJSON(b.cartLocked(currentUserID(c))))
}

func sameVariant(a, b *models.Variant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (b *Backend) addToCart(c *gin.Context) {
	var body models.CartAddition
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity < 1 {
		respond(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.productLocked(body.ProductID)
	if !ok {
		respond(c, http.StatusNotFound, "Product not found")
		return
	}
	product := b.products[i]
	cart := b.cartLocked(currentUserID(c))
	for j := range cart.Items {
		item := &cart.Items[j]
		if item.Product.ID == product.ID && sameVariant(item.Variant, body.Variant) {
			item.Quantity += body.Quantity
			c.JSON(http.StatusOK, cartJSON(cart))
			return
		}
	}
	cart.Items = append(cart.Items, models.CartItem{
		ID:       b.nextID("ci"),
		Product:  models.ProductRef{ID: product.ID, Product: &product},
		Quantity: body.Quantity,
		Price:    product.Price,
		Variant:  body.Variant,
	})
	c.JSON(http.StatusOK, cartJSON(cart))
}

func (b *Backend) withCartItem(c *gin.Context, fn func(cart *models.Cart, i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cart := b.cartLocked(currentUserID(c))
	for i := range cart.Items {
		if cart.Items[i].ID == c.Param("itemId") {
			fn(cart, i)
			return
		}
	}
	respond(c, http.StatusNotFound, "Cart item not found")
}

func (b *Backend) updateCartItem(c *gin.Context) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity < 1 {
		respond(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	b.withCartItem(c, func(cart *models.Cart, i int) {
		cart.Items[i].Quantity = body.Quantity
		c.JSON(http.StatusOK, cartJSON(cart))
	})
}

func (b *Backend) removeCartItem(c *gin.Context) {
	b.withCartItem(c, func(cart *models.Cart, i int) {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		c.JSON(http.StatusOK, cartJSON(cart))
	})
}

func (b *Backend) clearCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cart := b.cartLocked(currentUserID(c))
	cart.Items = []models.CartItem{}
	cart.Coupon = nil
	c.JSON(http.StatusOK, cartJSON(cart))
}

func (b *Backend) applyCoupon(c *gin.Context) {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, "Coupon code is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for _, coupon := range b.coupons {
		if strings.EqualFold(coupon.Code, strings.TrimSpace(body.Code)) && coupon.IsActive && !coupon.Expired(now) {
			cart := b.cartLocked(currentUserID(c))
			applied := coupon
			cart.Coupon = &applied
			c.JSON(http.StatusOK, cartJSON(cart))
			return
		}
	}
	respond(c, http.StatusNotFound, "Invalid or expired coupon")
}

func (b *Backend) removeCoupon(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cart := b.cartLocked(currentUserID(c))
	cart.Coupon = nil
	c.JSON(http.StatusOK, cartJSON(cart))
}

func (b *Backend) listAddresses(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := append([]models.Address{}, b.addresses[currentUserID(c)]...)
	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

// makeDefaultLocked keeps at most one default per user.
func (b *Backend) makeDefaultLocked(userID, id string) {
	list := b.addresses[userID]
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
}

func (b *Backend) createAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil || addr.FullName == "" || addr.Pincode == "" {
		respond(c, http.StatusBadRequest, "Full name and pincode are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	userID := currentUserID(c)
	addr.ID = b.nextID("a")
	b.addresses[userID] = append(b.addresses[userID], addr)
	if addr.IsDefault || len(b.addresses[userID]) == 1 {
		addr.IsDefault = true
		b.makeDefaultLocked(userID, addr.ID)
	}
	c.JSON(http.StatusCreated, gin.H{"address": addr})
}

func (b *Backend) withAddress(c *gin.Context, fn func(userID string, i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID := currentUserID(c)
	for i, addr := range b.addresses[userID] {
		if addr.ID == c.Param("id") {
			fn(userID, i)
			return
		}
	}
	respond(c, http.StatusNotFound, "Address not found")
}

func (b *Backend) updateAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.withAddress(c, func(userID string, i int) {
		addr.ID = b.addresses[userID][i].ID
		b.addresses[userID][i] = addr
		if addr.IsDefault {
			b.makeDefaultLocked(userID, addr.ID)
		}
		c.JSON(http.StatusOK, gin.H{"address": addr})
	})
}

func (b *Backend) deleteAddress(c *gin.Context) {
	b.withAddress(c, func(userID string, i int) {
		list := b.addresses[userID]
		b.addresses[userID] = append(list[:i], list[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
	})
}

// setDefaultAddress answers with the target record only.
func (b *Backend) setDefaultAddress(c *gin.Context) {
	b.withAddress(c, func(userID string, i int) {
		b.makeDefaultLocked(userID, b.addresses[userID][i].ID)
		c.JSON(http.StatusOK, gin.H{"address": b.addresses[userID][i]})
	})
}
