package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/state"
)

func addressesView(snap state.Snapshot[[]models.Address]) gin.H {
	return gin.H{
		"addresses": snap.Data,
		"isLoading": snap.IsLoading,
		"error":     snap.Error,
	}
}

func GetAddresses(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /addresses"
		defer handlePanic(c, route)

		if err := store.Addresses.Fetch(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, addressesView(store.Addresses.Snapshot()))
	}
}

func CreateAddress(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /addresses"
		defer handlePanic(c, route)

		var addr models.Address
		if !bindJSON(c, route, &addr) {
			return
		}
		created, err := store.Addresses.Add(c.Request.Context(), addr)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"address": created})
	}
}

func UpdateAddress(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /addresses/:id"
		defer handlePanic(c, route)

		var addr models.Address
		if !bindJSON(c, route, &addr) {
			return
		}
		updated, err := store.Addresses.Update(c.Request.Context(), c.Param("id"), addr)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": updated})
	}
}

func DeleteAddress(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /addresses/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := store.Addresses.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

func SetDefaultAddress(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /addresses/:id/default"
		defer handlePanic(c, route)

		if err := store.Addresses.SetDefault(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, addressesView(store.Addresses.Snapshot()))
	}
}
