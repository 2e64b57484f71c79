package api

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Videos struct {
	c *httpclient.Client
}

func (v *Videos) List(ctx context.Context) ([]models.Video, error) {
	var raw []byte
	if err := v.c.Get(ctx, "/api/videos", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Video](raw, "videos", "data")
}

func (v *Videos) Get(ctx context.Context, id string) (*models.Video, error) {
	var raw []byte
	if err := v.c.Get(ctx, "/api/videos/"+id, nil, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Video](raw, "video", "data")
}

// Create requires a file.
func (v *Videos) Create(ctx context.Context, form models.VideoForm) (*models.Video, error) {
	if form.File == nil {
		return nil, &models.ValidationError{Details: []string{"video file is required"}}
	}
	return v.send(ctx, http.MethodPost, "/api/videos", form)
}

// Update leaves the stored file untouched when form.File is nil.
func (v *Videos) Update(ctx context.Context, id string, form models.VideoForm) (*models.Video, error) {
	return v.send(ctx, http.MethodPut, "/api/videos/"+id, form)
}

func (v *Videos) Delete(ctx context.Context, id string) error {
	return v.c.Delete(ctx, "/api/videos/"+id, nil)
}

func (v *Videos) send(ctx context.Context, method, path string, in models.VideoForm) (*models.Video, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	form := httpclient.NewForm().
		Set("title", in.Title).
		Set("description", in.Description).
		Set("product", in.Product).
		Set("isActive", strconv.FormatBool(in.IsActive))
	if in.File != nil {
		form.File("video", in.File.FileName, in.File.ContentType, in.File.Reader)
	}

	var raw []byte
	if err := v.c.Multipart(ctx, method, path, form, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Video](raw, "video", "data")
}
