package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/models"
)

func CreateVideo(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/videos"
		defer handlePanic(c, route)

		input, err := parseMultipartVideoRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		form := input.applyTo(models.VideoForm{IsActive: true})

		upload, file, err := openUpload(input.File, videoRule)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		form.File = upload

		created, err := a.Videos.Create(c.Request.Context(), form)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"video": created})
	}
}

// UpdateVideo merges the submitted fields into the stored video.
func UpdateVideo(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/videos/:id"
		defer handlePanic(c, route)

		id := c.Param("id")
		input, err := parseMultipartVideoRequest(c)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		current, err := a.Videos.Get(c.Request.Context(), id)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		form := input.applyTo(videoFormOf(*current))

		upload, file, err := openUpload(input.File, videoRule)
		if err != nil {
			respondMultipartError(c, route, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		form.File = upload

		updated, err := a.Videos.Update(c.Request.Context(), id, form)
		if err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"video": updated})
	}
}

func DeleteVideo(a *api.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/videos/:id"
		defer handlePanic(c, route)

		if !requireConfirmation(c, route) {
			return
		}
		if err := a.Videos.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
	}
}
