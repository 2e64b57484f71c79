package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/models"
)

func GetDashboard(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/dashboard"
		defer handlePanic(c, route)

		overview, err := a.Dashboard.Overview(c.Request.Context())
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func GetUsers(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/users"
		defer handlePanic(c, route)

		users, err := a.Users.List(c.Request.Context())
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

func GetUser(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/users/:id"
		defer handlePanic(c, route)

		user, err := a.Users.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func UpdateUser(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/users/:id"
		defer handlePanic(c, route)

		var update models.UserUpdate
		if !bindJSON(c, route, &update) {
			return
		}
		user, err := a.Users.Update(c.Request.Context(), c.Param("id"), update)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func SetUserStatus(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/users/:id/status"
		defer handlePanic(c, route)

		var body struct {
			IsActive *bool `json:"isActive"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		if body.IsActive == nil {
			respondWithError(c, http.StatusBadRequest, route, "isActive is required")
			return
		}
		user, err := a.Users.SetStatus(c.Request.Context(), c.Param("id"), *body.IsActive)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func SetUserRole(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/users/:id/role"
		defer handlePanic(c, route)

		var body struct {
			Role string `json:"role"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		role := strings.ToLower(strings.TrimSpace(body.Role))
		if role != "user" && role != models.RoleAdmin {
			respondWithError(c, http.StatusBadRequest, route, "role must be user or admin")
			return
		}
		user, err := a.Users.SetRole(c.Request.Context(), c.Param("id"), role)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func DeleteUser(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/users/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := a.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}

func GetCoupons(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/coupons"
		defer handlePanic(c, route)

		coupons, err := a.Coupons.List(c.Request.Context())
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})
	}
}

func CreateCoupon(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/coupons"
		defer handlePanic(c, route)

		var coupon models.Coupon
		if !bindJSON(c, route, &coupon) {
			return
		}
		coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
		created, err := a.Coupons.Create(c.Request.Context(), coupon)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"coupon": created})
	}
}

func UpdateCoupon(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/coupons/:id"
		defer handlePanic(c, route)

		var coupon models.Coupon
		if !bindJSON(c, route, &coupon) {
			return
		}
		coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
		updated, err := a.Coupons.Update(c.Request.Context(), c.Param("id"), coupon)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupon": updated})
	}
}

func DeleteCoupon(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/coupons/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := a.Coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "coupon deleted"})
	}
}

func GetSubscribers(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/subscribers"
		defer handlePanic(c, route)

		subscribers, err := a.Subscription.All(c.Request.Context())
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscribers": subscribers})
	}
}

func SendNewsletter(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/newsletter"
		defer handlePanic(c, route)

		var news models.Newsletter
		if !bindJSON(c, route, &news) {
			return
		}
		if err := a.Subscription.SendNews(c.Request.Context(), news); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "newsletter sent"})
	}
}
