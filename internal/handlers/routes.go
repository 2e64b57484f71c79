package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/guard"
	"storefront/internal/state"
)

type Deps struct {
	Store  *state.Store
	API    *api.API
	Policy guard.Authorizer
}

// Mount registers the console. Storefront routes need a signed-in user; /admin
// routes need the admin role.
func Mount(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", Home(d.Store))
	r.GET("/login", LoginPage(d.Store))
	r.GET("/session", GetSession(d.Store))
	r.POST("/session/refresh", RefreshSession(d.Store))

	r.POST("/login", Login(d.Store))
	r.POST("/register", Register(d.Store))
	r.POST("/admin/login", AdminLogin(d.Store))
	r.POST("/admin/register", AdminRegister(d.Store))

	r.GET("/products", GetProducts(d.Store))
	r.GET("/products/search", SearchProducts(d.Store))
	r.GET("/products/:id", GetProduct(d.Store))
	r.GET("/products/:id/reviews", GetReviews(d.API))
	r.GET("/categories", GetCategories(d.Store))
	r.GET("/videos", GetVideos(d.API))
	r.GET("/videos/:id", GetVideo(d.API))
	r.POST("/subscribe", Subscribe(d.API))

	storefront := r.Group("/", guard.Middleware(d.Store.Auth, guard.AreaStorefront, d.Policy))
	{
		storefront.POST("/logout", Logout(d.Store))

		storefront.GET("/profile", GetProfile(d.Store))
		storefront.PUT("/profile", UpdateProfile(d.Store))
		storefront.PUT("/profile/password", ChangePassword(d.Store))

		storefront.POST("/products/:id/reviews", AddReview(d.API))

		storefront.GET("/cart", GetCart(d.Store))
		storefront.POST("/cart", AddToCart(d.Store))
		storefront.DELETE("/cart", ClearCart(d.Store))
		storefront.POST("/cart/coupon", ApplyCoupon(d.Store))
		storefront.DELETE("/cart/coupon", RemoveCoupon(d.Store))
		storefront.PUT("/cart/:itemId", UpdateCartItem(d.Store))
		storefront.DELETE("/cart/:itemId", RemoveCartItem(d.Store))

		storefront.GET("/addresses", GetAddresses(d.Store))
		storefront.POST("/addresses", CreateAddress(d.Store))
		storefront.PUT("/addresses/:id", UpdateAddress(d.Store))
		storefront.DELETE("/addresses/:id", DeleteAddress(d.Store))
		storefront.PATCH("/addresses/:id/default", SetDefaultAddress(d.Store))

		storefront.GET("/orders", GetOrders(d.Store))
		storefront.POST("/checkout", Checkout(d.Store))
	}

	admin := r.Group("/admin", guard.Middleware(d.Store.Auth, guard.AreaAdmin, d.Policy))
	{
		admin.POST("/logout", AdminLogout(d.Store))
		admin.GET("/dashboard", GetDashboard(d.API))

		admin.GET("/products", GetProducts(d.Store))
		admin.POST("/products", CreateProduct(d.Store))
		admin.PUT("/products/:id", UpdateProduct(d.Store, d.API))
		admin.DELETE("/products/:id", DeleteProduct(d.Store))

		admin.GET("/orders", GetOrders(d.Store))
		admin.PUT("/orders/:id/status", UpdateOrderStatus(d.Store))
		admin.DELETE("/orders/:id", DeleteOrder(d.Store))

		admin.GET("/users", GetUsers(d.API))
		admin.GET("/users/:id", GetUser(d.API))
		admin.PUT("/users/:id", UpdateUser(d.API))
		admin.PUT("/users/:id/status", SetUserStatus(d.API))
		admin.PUT("/users/:id/role", SetUserRole(d.API))
		admin.DELETE("/users/:id", DeleteUser(d.API))

		admin.GET("/coupons", GetCoupons(d.API))
		admin.POST("/coupons", CreateCoupon(d.API))
		admin.PUT("/coupons/:id", UpdateCoupon(d.API))
		admin.DELETE("/coupons/:id", DeleteCoupon(d.API))

		admin.GET("/videos", GetVideos(d.API))
		admin.POST("/videos", CreateVideo(d.API))
		admin.PUT("/videos/:id", UpdateVideo(d.API))
		admin.DELETE("/videos/:id", DeleteVideo(d.API))

		admin.GET("/subscribers", GetSubscribers(d.API))
		admin.POST("/newsletter", SendNewsletter(d.API))
	}
}
