package models

type Address struct {
	ID        string `json:"id,omitempty"`
	FullName  string `json:"fullName" validate:"required"`
	Phone     string `json:"phone" validate:"required,min=7,max=15"`
	Line1     string `json:"addressLine1" validate:"required"`
	Line2     string `json:"addressLine2,omitempty"`
	Landmark  string `json:"landmark,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"required,len=6,numeric"`
	Country   string `json:"country,omitempty"`
	IsDefault bool   `json:"isDefault"`
}
