package state

import (
	"context"
	"slices"

	"storefront/internal/api"
	"storefront/internal/models"
)

type ProductState struct {
	Items      []models.Product    `json:"items"`
	Query      models.ProductQuery `json:"-"`
	Selected   *models.Product     `json:"selected"`
	Categories []models.Category   `json:"categories"`
}

const (
	keySelected   = "selected"
	keyCategories = "categories"
)

type ProductSlice struct {
	*slice[ProductState]
	api *api.Products
}

func NewProductSlice(products *api.Products) *ProductSlice {
	return &ProductSlice{
		slice: newSlice("products", ProductState{Items: []models.Product{}, Categories: []models.Category{}}),
		api:   products,
	}
}

// Fetch replaces the list.
func (p *ProductSlice) Fetch(ctx context.Context, q models.ProductQuery) error {
	_, err := run(ctx, p.slice, keyList, func(ctx context.Context) ([]models.Product, error) {
		return p.api.List(ctx, q)
	}, func(data *ProductState, list []models.Product) {
		data.Items = list
		data.Query = q
	})
	return err
}

// Search replaces the list with the matches for term.
func (p *ProductSlice) Search(ctx context.Context, term string) error {
	_, err := run(ctx, p.slice, keyList, func(ctx context.Context) ([]models.Product, error) {
		return p.api.Search(ctx, term)
	}, func(data *ProductState, list []models.Product) {
		data.Items = list
		data.Query = models.ProductQuery{Search: term}
	})
	return err
}

func (p *ProductSlice) FetchOne(ctx context.Context, id string) error {
	_, err := run(ctx, p.slice, keySelected, func(ctx context.Context) (*models.Product, error) {
		return p.api.Get(ctx, id)
	}, func(data *ProductState, product *models.Product) {
		data.Selected = product
	})
	return err
}

func (p *ProductSlice) FetchCategories(ctx context.Context) error {
	_, err := run(ctx, p.slice, keyCategories, p.api.Categories, func(data *ProductState, list []models.Category) {
		data.Categories = list
	})
	return err
}

// Create pushes the new product onto the list.
func (p *ProductSlice) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	return run(ctx, p.slice, "", func(ctx context.Context) (*models.Product, error) {
		return p.api.Create(ctx, form)
	}, func(data *ProductState, product *models.Product) {
		if product != nil {
			data.Items = append(slices.Clip(data.Items), *product)
		}
	})
}

// Update splices the returned product into the list.
func (p *ProductSlice) Update(ctx context.Context, id string, form models.ProductForm) (*models.Product, error) {
	return run(ctx, p.slice, "update:"+id, func(ctx context.Context) (*models.Product, error) {
		return p.api.Update(ctx, id, form)
	}, func(data *ProductState, product *models.Product) {
		if product == nil {
			return
		}
		data.Items = replaceByID(data.Items, *product, func(p models.Product) string { return p.ID })
		if data.Selected != nil && data.Selected.ID == product.ID {
			data.Selected = product
		}
	})
}

func (p *ProductSlice) Delete(ctx context.Context, id string) error {
	_, err := run(ctx, p.slice, "delete:"+id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.api.Delete(ctx, id)
	}, func(data *ProductState, _ struct{}) {
		data.Items = removeByID(data.Items, id, func(p models.Product) string { return p.ID })
		if data.Selected != nil && data.Selected.ID == id {
			data.Selected = nil
		}
	})
	return err
}

// Lookup finds a product in the current list.
func (p *ProductSlice) Lookup(id string) (models.Product, error) {
	snap := p.Snapshot()
	for _, product := range snap.Data.Items {
		if product.ID == id {
			return product, nil
		}
	}
	if snap.Data.Selected != nil && snap.Data.Selected.ID == id {
		return *snap.Data.Selected, nil
	}
	return models.Product{}, ErrNotFound
}
