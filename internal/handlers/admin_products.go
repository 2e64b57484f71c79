package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/models"
	"storefront/internal/state"
)

func CreateProduct(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/products"
		defer handlePanic(c, route)

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		form := input.applyTo(models.ProductForm{})
		if err := validateComparePrice(form); err != nil {
			respondAPIError(c, route, err)
			return
		}

		image, file, err := openUpload(input.Image, imageRule)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		form.Image = image

		created, err := store.Products.Create(c.Request.Context(), form)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": created})
	}
}

// UpdateProduct merges the submitted fields into the stored product. Leaving out
// the image keeps the current one.
func UpdateProduct(store *state.Store, a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/products/:id"
		defer handlePanic(c, route)

		id := c.Param("id")
		input, err := parseMultipartProductRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}

		current, err := store.Products.Lookup(id)
		if err != nil {
			fetched, fetchErr := a.Products.Get(c.Request.Context(), id)
			if fetchErr != nil {
				respondAPIError(c, route, fetchErr)
				return
			}
			current = *fetched
		}

		form := input.applyTo(productFormOf(current))
		if err := validateComparePrice(form); err != nil {
			respondAPIError(c, route, err)
			return
		}

		image, file, err := openUpload(input.Image, imageRule)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		form.Image = image

		updated, err := store.Products.Update(c.Request.Context(), id, form)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": updated})
	}
}

func DeleteProduct(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/products/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := store.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
