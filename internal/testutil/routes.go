package testutil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/models"
)

const userKey = "user"

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.intercept)

	authn := b.requireAuth(false)
	admin := b.requireAuth(true)

	auth := r.Group("/api/auth")
	{
		auth.POST("/verify", authn, b.verify)
		auth.POST("/user/register", b.register("user"))
		auth.POST("/user/login", b.login(false))
		auth.GET("/user/logout", b.logout)
		auth.POST("/admin/login", b.login(true))
		auth.POST("/admin/register", b.register("admin"))
		auth.GET("/admin/logout", b.logout)
		auth.GET("/profile", authn, b.profile)
		auth.PUT("/profile", authn, b.updateProfile)
		auth.PUT("/password", authn, b.changePassword)
		auth.POST("/refresh", authn, b.refresh)
	}

	cloth := r.Group("/api/cloth")
	{
		cloth.GET("", b.listProducts)
		cloth.GET("/categories", b.categories)
		cloth.GET("/search", b.searchProducts)
		cloth.GET("/:id", b.getProduct)
		cloth.POST("", admin, b.createProduct)
		cloth.PUT("/:id", admin, b.updateProduct)
		cloth.DELETE("/del/:id", admin, b.deleteProduct)
		cloth.GET("/:id/reviews", b.listReviews)
		cloth.POST("/:id/reviews", authn, b.addReview)
	}

	cart := r.Group("/cart", authn)
	{
		cart.GET("", b.getCart)
		cart.POST("", b.addToCart)
		cart.DELETE("", b.clearCart)
		cart.POST("/coupon", b.applyCoupon)
		cart.DELETE("/coupon", b.removeCoupon)
		cart.PUT("/:itemId", b.updateCartItem)
		cart.DELETE("/:itemId", b.removeCartItem)
	}

	addresses := r.Group("/api/addresses", authn)
	{
		addresses.GET("", b.listAddresses)
		addresses.POST("", b.createAddress)
		addresses.PUT("/:id", b.updateAddress)
		addresses.DELETE("/:id", b.deleteAddress)
		addresses.PATCH("/:id/default", b.setDefaultAddress)
	}

	adminGroup := r.Group("/admin")
	{
		adminGroup.GET("/orders", authn, b.listOrders)
		adminGroup.POST("/orders", authn, b.createOrder)
		adminGroup.PUT("/orders/:id/status", admin, b.updateOrderStatus)
		adminGroup.DELETE("/orders/:id", admin, b.deleteOrder)

		adminGroup.GET("/users", admin, b.listUsers)
		adminGroup.GET("/users/:id", admin, b.getUser)
		adminGroup.PUT("/users/:id", admin, b.updateUser)
		adminGroup.PUT("/users/:id/status", admin, b.setUserStatus)
		adminGroup.PUT("/users/:id/role", admin, b.setUserRole)
		adminGroup.DELETE("/users/:id", admin, b.deleteUser)

		adminGroup.GET("/coupons", admin, b.listCoupons)
		adminGroup.POST("/coupons", admin, b.createCoupon)
		adminGroup.PUT("/coupons/:id", admin, b.updateCoupon)
		adminGroup.DELETE("/coupons/:id", admin, b.deleteCoupon)

		adminGroup.GET("/dashboard", admin, b.dashboard)
	}

	videos := r.Group("/api/videos")
	{
		videos.GET("", b.listVideos)
		videos.GET("/:id", b.getVideo)
		videos.POST("", admin, b.createVideo)
		videos.PUT("/:id", admin, b.updateVideo)
		videos.DELETE("/:id", admin, b.deleteVideo)
	}

	subscribe := r.Group("/api/subscribe")
	{
		subscribe.POST("", b.subscribe)
		subscribe.POST("/send-news", admin, b.sendNews)
		subscribe.GET("/all", admin, b.listSubscribers)
	}

	return r
}

// intercept counts the request, then applies holds and injected failures.
func (b *Backend) intercept(c *gin.Context) {
	key := routeKey(c.Request.Method, c.FullPath())

	b.mu.Lock()
	b.requests[key]++
	hold, held := b.holds[key]
	if held {
		delete(b.holds, key)
	}
	fail, failing := b.failures[key]
	b.mu.Unlock()

	if held {
		select {
		case <-hold:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	if !failing {
		c.Next()
		return
	}
	if fail.network {
		conn, _, err := c.Writer.Hijack()
		if err == nil {
			conn.Close()
		}
		c.Abort()
		return
	}
	if fail.message == "" {
		c.AbortWithStatus(fail.status)
		return
	}
	respond(c, fail.status, fail.message)
}

// requireAuth reads the bearer header, then the token cookie.
func (b *Backend) requireAuth(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if raw == "" {
			raw, _ = c.Cookie("token")
		}
		if raw == "" {
			respond(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return b.secret, nil
		})
		if err != nil {
			respond(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		sub, _ := claims.GetSubject()

		b.mu.Lock()
		acct, ok := b.accounts[sub]
		var user models.User
		if ok {
			user = acct.user
		}
		b.mu.Unlock()
		if !ok || !user.IsActive {
			respond(c, http.StatusUnauthorized, "Not authorized")
			return
		}
		if adminOnly && !user.IsAdmin() {
			respond(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Set(userKey, user.ID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userKey)
}
