package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Products struct {
	c *httpclient.Client
}

// List returns the catalog as a bare slice whatever envelope the backend used.
func (p *Products) List(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	var raw []byte
	if err := p.c.Get(ctx, "/api/cloth", productQueryValues(q), &raw); err != nil {
		return nil, err
	}
	return normalizeProducts(raw)
}

func (p *Products) Get(ctx context.Context, id string) (*models.Product, error) {
	var raw []byte
	if err := p.c.Get(ctx, "/api/cloth/"+id, nil, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Product](raw, "cloth", "product", "data")
}

func (p *Products) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	return p.send(ctx, http.MethodPost, "/api/cloth", form)
}

// Update sends only a new image when one was chosen.
func (p *Products) Update(ctx context.Context, id string, form models.ProductForm) (*models.Product, error) {
	return p.send(ctx, http.MethodPut, "/api/cloth/"+id, form)
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.c.Delete(ctx, "/api/cloth/del/"+id, nil)
}

func (p *Products) Categories(ctx context.Context) ([]models.Category, error) {
	var raw []byte
	if err := p.c.Get(ctx, "/api/cloth/categories", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Category](raw, "categories", "data")
}

func (p *Products) Search(ctx context.Context, term string) ([]models.Product, error) {
	var raw []byte
	query := url.Values{"q": {strings.TrimSpace(term)}}
	if err := p.c.Get(ctx, "/api/cloth/search", query, &raw); err != nil {
		return nil, err
	}
	return normalizeProducts(raw)
}

func (p *Products) Reviews(ctx context.Context, productID string) ([]models.Review, error) {
	var raw []byte
	if err := p.c.Get(ctx, "/api/cloth/"+productID+"/reviews", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Review](raw, "reviews", "data")
}

func (p *Products) AddReview(ctx context.Context, productID string, review models.Review) (*models.Review, error) {
	if err := models.Validate(review); err != nil {
		return nil, err
	}
	var raw []byte
	if err := p.c.Post(ctx, "/api/cloth/"+productID+"/reviews", review, &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Review](raw, "review", "data")
}

func (p *Products) send(ctx context.Context, method, path string, form models.ProductForm) (*models.Product, error) {
	if err := models.Validate(form); err != nil {
		return nil, err
	}
	var raw []byte
	if err := p.c.Multipart(ctx, method, path, productForm(form), &raw); err != nil {
		return nil, err
	}
	return unwrapOne[models.Product](raw, "cloth", "product", "data")
}

func productForm(in models.ProductForm) *httpclient.Form {
	form := httpclient.NewForm().
		Set("title", in.Title).
		Set("description", in.Description).
		Set("price", formatFloat(in.Price)).
		Set("category", in.Category).
		Set("brand", in.Brand).
		Set("stock", strconv.Itoa(in.Stock))
	if in.ComparePrice != nil {
		form.Set("comparePrice", formatFloat(*in.ComparePrice))
	}
	for _, size := range in.Sizes {
		form.Set("sizes", size)
	}
	if in.Image != nil {
		form.File("image", in.Image.FileName, in.Image.ContentType, in.Image.Reader)
	}
	return form
}

func productQueryValues(q models.ProductQuery) url.Values {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.MinPrice > 0 {
		values.Set("minPrice", formatFloat(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		values.Set("maxPrice", formatFloat(q.MaxPrice))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
