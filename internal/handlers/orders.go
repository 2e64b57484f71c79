package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/state"
)

func ordersView(snap state.Snapshot[[]models.Order]) gin.H {
	return gin.H{
		"orders":    snap.Data,
		"isLoading": snap.IsLoading,
		"error":     snap.Error,
	}
}

// GetOrders lists the caller's orders, or every order for an admin.
func GetOrders(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		if err := store.Orders.Fetch(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		snap := store.Orders.Snapshot()
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filtered := make([]models.Order, 0, len(snap.Data))
			for _, order := range snap.Data {
				if string(order.Status) == status {
					filtered = append(filtered, order)
				}
			}
			snap.Data = filtered
		}
		c.JSON(http.StatusOK, ordersView(snap))
	}
}

func UpdateOrderStatus(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:id/status"
		defer handlePanic(c, route)

		var body struct {
			Status models.OrderStatus `json:"status"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		if !body.Status.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "invalid order status")
			return
		}
		order, err := store.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func DeleteOrder(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/orders/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := store.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
