package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
	OrderRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is one of the known labels, admin-extended ones included.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderReturned, OrderRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type OrderItem struct {
	Product  ProductRef `json:"product"`
	Title    string     `json:"title,omitempty"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"`
	Variant  *Variant   `json:"variant,omitempty"`
}

type Order struct {
	ID              string        `json:"id"`
	User            Ref           `json:"user"`
	Items           []OrderItem   `json:"items"`
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	CouponCode      string        `json:"couponCode,omitempty"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
	Status          OrderStatus   `json:"status"`
	CreatedAt       time.Time     `json:"createdAt,omitempty"`
}

// NewOrder is the checkout request body: a snapshot of the cart and the chosen address.
type NewOrder struct {
	Items           []OrderItem   `json:"items" validate:"min=1"`
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" validate:"oneof=cod online"`
	CouponCode      string        `json:"couponCode,omitempty"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
}
