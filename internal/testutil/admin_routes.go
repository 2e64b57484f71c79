package testutil

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

// listOrders shows every order to admins and a user's own orders otherwise.
func (b *Backend) listOrders(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.accounts[currentUserID(c)].user
	list := []models.Order{}
	for _, o := range b.orders {
		if user.IsAdmin() || o.User.ID == user.ID {
			list = append(list, o)
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (b *Backend) createOrder(c *gin.Context) {
	var body models.NewOrder
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Items) == 0 {
		respond(c, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	user := b.accounts[currentUserID(c)].user
	order := models.Order{
		ID:              b.nextID("o"),
		User:            models.Ref{ID: user.ID, Name: user.Name, Email: user.Email},
		Items:           body.Items,
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
		CouponCode:      body.CouponCode,
		Subtotal:        body.Subtotal,
		Discount:        body.Discount,
		Total:           body.Total,
		Status:          models.OrderPending,
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
	b.orders = append(b.orders, order)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (b *Backend) withOrder(c *gin.Context, fn func(i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == c.Param("id") {
			fn(i)
			return
		}
	}
	respond(c, http.StatusNotFound, "Order not found")
}

func (b *Backend) updateOrderStatus(c *gin.Context) {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		respond(c, http.StatusBadRequest, "Status is required")
		return
	}
	b.withOrder(c, func(i int) {
		b.orders[i].Status = body.Status
		c.JSON(http.StatusOK, gin.H{"order": b.orders[i]})
	})
}

func (b *Backend) deleteOrder(c *gin.Context) {
	b.withOrder(c, func(i int) {
		b.orders = append(b.orders[:i], b.orders[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
	})
}

func (b *Backend) listCoupons(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"coupons": append([]models.Coupon{}, b.coupons...)})
}

func (b *Backend) createCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil || coupon.Code == "" {
		respond(c, http.StatusBadRequest, "Coupon code is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.coupons {
		if strings.EqualFold(existing.Code, coupon.Code) {
			respond(c, http.StatusConflict, "Coupon code already exists")
			return
		}
	}
	coupon.ID = b.nextID("c")
	b.coupons = append(b.coupons, coupon)
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

func (b *Backend) withCoupon(c *gin.Context, fn func(i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.coupons {
		if b.coupons[i].ID == c.Param("id") {
			fn(i)
			return
		}
	}
	respond(c, http.StatusNotFound, "Coupon not found")
}

func (b *Backend) updateCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.withCoupon(c, func(i int) {
		coupon.ID = b.coupons[i].ID
		b.coupons[i] = coupon
		c.JSON(http.StatusOK, gin.H{"coupon": coupon})
	})
}

func (b *Backend) deleteCoupon(c *gin.Context) {
	b.withCoupon(c, func(i int) {
		b.coupons = append(b.coupons[:i], b.coupons[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
	})
}

func (b *Backend) dashboard(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := models.DashboardStats{
		TotalOrders:   len(b.orders),
		TotalUsers:    len(b.accounts),
		TotalProducts: len(b.products),
		RecentOrders:  []models.Order{},
	}
	for _, o := range b.orders {
		stats.TotalRevenue += o.Total
		if o.Status == models.OrderPending {
			stats.PendingOrders++
		}
	}
	start := len(b.orders) - 5
	if start < 0 {
		start = 0
	}
	stats.RecentOrders = append(stats.RecentOrders, b.orders[start:]...)
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (b *Backend) listVideos(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"videos": append([]models.Video{}, b.videos...)})
}

func (b *Backend) withVideo(c *gin.Context, fn func(i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.videos {
		if b.videos[i].ID == c.Param("id") {
			fn(i)
			return
		}
	}
	respond(c, http.StatusNotFound, "Video not found")
}

func (b *Backend) getVideo(c *gin.Context) {
	b.withVideo(c, func(i int) {
		c.JSON(http.StatusOK, gin.H{"video": b.videos[i]})
	})
}

func applyVideoFields(v *models.Video, u Upload) {
	if value, ok := first(u.Fields, "title"); ok {
		v.Title = value
	}
	if value, ok := first(u.Fields, "description"); ok {
		v.Description = value
	}
	if value, ok := first(u.Fields, "product"); ok {
		v.Product = value
	}
	if value, ok := first(u.Fields, "isActive"); ok {
		v.IsActive, _ = strconv.ParseBool(value)
	}
	if name, ok := u.Files["video"]; ok {
		v.URL = "uploads/videos/" + name
	}
}

func (b *Backend) createVideo(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	upload, ok := b.recordUploadLocked(c)
	if !ok {
		return
	}
	if _, ok := upload.Files["video"]; !ok {
		respond(c, http.StatusBadRequest, "Video file is required")
		return
	}
	video := models.Video{ID: b.nextID("v"), CreatedAt: time.Now().UTC().Truncate(time.Second)}
	applyVideoFields(&video, upload)
	b.videos = append(b.videos, video)
	c.JSON(http.StatusCreated, gin.H{"video": video})
}

func (b *Backend) updateVideo(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.videos {
		if b.videos[i].ID != c.Param("id") {
			continue
		}
		upload, ok := b.recordUploadLocked(c)
		if !ok {
			return
		}
		applyVideoFields(&b.videos[i], upload)
		c.JSON(http.StatusOK, gin.H{"video": b.videos[i]})
		return
	}
	respond(c, http.StatusNotFound, "Video not found")
}

func (b *Backend) deleteVideo(c *gin.Context) {
	b.withVideo(c, func(i int) {
		b.videos = append(b.videos[:i], b.videos[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
	})
}

func (b *Backend) subscribe(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !strings.Contains(body.Email, "@") {
		respond(c, http.StatusBadRequest, "A valid email is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subscribers {
		if strings.EqualFold(s.Email, body.Email) {
			respond(c, http.StatusConflict, "Already subscribed")
			return
		}
	}
	b.subscribers = append(b.subscribers, models.Subscriber{
		ID:        b.nextID("s"),
		Email:     body.Email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	})
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

func (b *Backend) sendNews(c *gin.Context) {
	var news models.Newsletter
	if err := c.ShouldBindJSON(&news); err != nil || news.Subject == "" || news.Content == "" {
		respond(c, http.StatusBadRequest, "Subject and content are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.newsletters = append(b.newsletters, news)
	c.JSON(http.StatusOK, gin.H{"message": "Newsletter sent", "recipients": len(b.subscribers)})
}

func (b *Backend) listSubscribers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"subscribers": append([]models.Subscriber{}, b.subscribers...)})
}
