package models

type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

type CartItem struct {
	ID       string     `json:"id"`
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"`
	Variant  *Variant   `json:"variant,omitempty"`
}

type Cart struct {
	Items  []CartItem `json:"items"`
	Coupon *Coupon    `json:"coupon,omitempty"`
}

// CartAddition is the add-to-cart request.
type CartAddition struct {
	ProductID string   `json:"productId" validate:"required"`
	Quantity  int      `json:"quantity" validate:"min=1"`
	Variant   *Variant `json:"variant,omitempty"`
}

type CartTotals struct {
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}
