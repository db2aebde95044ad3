package models

import "time"

// Product represents a single line item on the bill.
// TotalPrice is derived from Price and Quantity on every write; callers
// can never set it directly.
type Product struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string    `json:"name" validate:"required,min=1,max=200"`
	Price      float64   `json:"price" validate:"gte=0"`
	Quantity   int       `json:"quantity" validate:"gte=1"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateProductRequest is the payload for adding a product. Price is a
// pointer so a missing price can be told apart from an explicit 0.
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	Price    *float64 `json:"price" validate:"required"`
	Quantity *int     `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateProductRequest carries a partial field set for an update. Any
// subset of the fields may be supplied; nil means "keep the stored value".
type UpdateProductRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}
