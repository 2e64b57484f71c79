package models

import "time"

type Product struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Price        float64    `json:"price"`
	ComparePrice *float64   `json:"comparePrice,omitempty"`
	Discount     *float64   `json:"discount,omitempty"`
	Images       StringList `json:"images"`
	Category     string     `json:"category"`
	Brand        string     `json:"brand,omitempty"`
	Sizes        StringList `json:"sizes,omitempty"`
	Stock        int        `json:"stock"`
	Rating       float64    `json:"rating"`
	ReviewCount  int        `json:"reviewCount"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// OnSale reports whether a higher compare-at price is shown next to the price.
func (p Product) OnSale() bool {
	return p.ComparePrice != nil && *p.ComparePrice > p.Price
}

func (p Product) InStock() bool { return p.Stock > 0 }

// ProductQuery carries the catalog list filters. Zero values are omitted.
type ProductQuery struct {
	Category string
	Search   string
	Sort     string
	MinPrice float64
	MaxPrice float64
	Page     int
	Limit    int
}

// ProductForm is the multipart body of admin create/update. A nil Image on update
// leaves the stored images untouched.
type ProductForm struct {
	Title        string `validate:"required"`
	Description  string
	Price        float64  `validate:"gt=0"`
	ComparePrice *float64 `validate:"omitempty,gt=0"`
	Category     string   `validate:"required"`
	Brand        string
	Sizes        []string
	Stock        int `validate:"gte=0"`
	Image        *Upload
}

type Review struct {
	ID        string    `json:"id,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating" validate:"min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
