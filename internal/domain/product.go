package domain

import (
	"math"
	"time"
)

// DefaultCurrency is applied when a create request carries no currency.
const DefaultCurrency = "USD"

// MaxImages is the number of image slots a product has.
const MaxImages = 3

// MaxStockQuantity is the largest stock quantity the backend stores.
const MaxStockQuantity = math.MaxInt32

// Product represents a product held by the remote catalog backend.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SKU           string    `json:"sku"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	StockQuantity int       `json:"stockQuantity"`
	Category      string    `json:"category,omitempty"`
	Images        []string  `json:"images,omitempty"`
	IsActive      bool      `json:"isActive"`
	Brand         string    `json:"brand,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateProductRequest is the normalized payload for POST /products.
type CreateProductRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	SKU           string   `json:"sku"`
	Price         float64  `json:"price"`
	StockQuantity int      `json:"stockQuantity"`
	Category      string   `json:"category,omitempty"`
	Images        []string `json:"images"`
	Brand         string   `json:"brand,omitempty"`
	Currency      string   `json:"currency"`
}

// UpdateProductRequest is the payload for PATCH /products/{id}. Nil fields are
// omitted from the body and left unchanged by the backend.
type UpdateProductRequest struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	SKU           *string   `json:"sku,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	StockQuantity *int      `json:"stockQuantity,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Images        *[]string `json:"images,omitempty"`
	Brand         *string   `json:"brand,omitempty"`
	Currency      *string   `json:"currency,omitempty"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateProductRequest) IsEmpty() bool {
	return r == UpdateProductRequest{}
}

// Apply returns a copy of p with every non-nil field of r applied.
func (r UpdateProductRequest) Apply(p Product) Product {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.StockQuantity != nil {
		p.StockQuantity = *r.StockQuantity
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Images != nil {
		p.Images = append([]string(nil), (*r.Images)...)
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.Currency != nil {
		p.Currency = *r.Currency
	}
	return p
}

// StockUpdate is the validated result of a stock adjustment.
type StockUpdate struct {
	Quantity int `json:"quantity"`
}

// Request converts the adjustment into the partial update sent to the backend.
func (s StockUpdate) Request() UpdateProductRequest {
	q := s.Quantity
	return UpdateProductRequest{StockQuantity: &q}
}
