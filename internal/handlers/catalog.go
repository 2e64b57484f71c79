package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/models"
	"storefront/internal/state"
)

func productsView(snap state.Snapshot[state.ProductState]) gin.H {
	return gin.H{
		"products":  snap.Data.Items,
		"isLoading": snap.IsLoading,
		"error":     snap.Error,
	}
}

// Home lists the catalog with the default query.
func Home(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /"
		defer handlePanic(c, route)

		if err := store.Products.Fetch(c.Request.Context(), models.ProductQuery{}); err != nil {
			respondAPIError(c, route, err)
			return
		}
		body := productsView(store.Products.Snapshot())
		body["view"] = "home"
		c.JSON(http.StatusOK, body)
	}
}

func GetProducts(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		query, err := parseProductQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err := store.Products.Fetch(c.Request.Context(), query); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, productsView(store.Products.Snapshot()))
	}
}

func SearchProducts(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/search"
		defer handlePanic(c, route)

		term := strings.TrimSpace(c.Query("q"))
		if term == "" {
			respondWithError(c, http.StatusBadRequest, route, "q is required")
			return
		}
		if err := store.Products.Search(c.Request.Context(), term); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, productsView(store.Products.Snapshot()))
	}
}

func GetProduct(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		if err := store.Products.FetchOne(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		product := store.Products.Snapshot().Data.Selected
		body := gin.H{"product": product}
		if product != nil {
			body["onSale"] = product.OnSale()
			body["inStock"] = product.InStock()
		}
		c.JSON(http.StatusOK, body)
	}
}

func GetCategories(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		if err := store.Products.FetchCategories(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": store.Products.Snapshot().Data.Categories})
	}
}

func GetReviews(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id/reviews"
		defer handlePanic(c, route)

		reviews, err := a.Products.Reviews(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

func AddReview(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/reviews"
		defer handlePanic(c, route)

		var review models.Review
		if !bindJSON(c, route, &review) {
			return
		}
		created, err := a.Products.AddReview(c.Request.Context(), c.Param("id"), review)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"review": created})
	}
}

func GetVideos(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /videos"
		defer handlePanic(c, route)

		videos, err := a.Videos.List(c.Request.Context())
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"videos": videos})
	}
}

func GetVideo(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /videos/:id"
		defer handlePanic(c, route)

		video, err := a.Videos.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"video": video})
	}
}

func Subscribe(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /subscribe"
		defer handlePanic(c, route)

		var body struct {
			Email string `json:"email"`
		}
		if !bindJSON(c, route, &body) {
			return
		}
		if err := a.Subscription.Subscribe(c.Request.Context(), strings.TrimSpace(body.Email)); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "subscribed"})
	}
}
