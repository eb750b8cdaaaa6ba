// Package schema holds the validation rules for product payloads. Each
// function either returns a normalized request ready to send, or a
// *validator.ValidationError listing field violations in field order.
package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/pkg/validator"
)

// ProductInput is a candidate product payload as typed by a user. A nil field
// is absent. For Images, nil is absent and an empty slice is present.
type ProductInput struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	SKU           *string  `json:"sku,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	StockQuantity *float64 `json:"stockQuantity,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Images        []string `json:"images,omitempty"`
	Brand         *string  `json:"brand,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
}

// StockInput is a candidate stock adjustment.
type StockInput struct {
	Quantity *float64 `json:"quantity"`
}

type fieldCheck struct {
	rule validator.Rule
	// required is reported when the field is absent from a create payload.
	required string
	value    func(ProductInput) (any, bool)
}

func present[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

// stockTags bound stock to a whole number that fits the backend column.
var stockTags = "integer,gte=0,lte=" + strconv.Itoa(domain.MaxStockQuantity)

var productFields = []fieldCheck{
	{
		rule: validator.Rule{Field: "name", Tags: "min=1,max=100", Messages: map[string]string{
			"min": "Product name is required",
			"max": "Product name must be less than 100 characters",
		}},
		required: "Product name is required",
		value:    func(in ProductInput) (any, bool) { return present(in.Name) },
	},
	{
		rule: validator.Rule{Field: "description", Tags: "max=1000", Messages: map[string]string{
			"max": "Description must be less than 1000 characters",
		}},
		value: func(in ProductInput) (any, bool) { return present(in.Description) },
	},
	{
		rule: validator.Rule{Field: "sku", Tags: "min=1,max=50,sku", Messages: map[string]string{
			"min": "SKU is required",
			"max": "SKU must be less than 50 characters",
			"sku": "SKU must contain only uppercase letters, numbers, hyphens, and underscores",
		}},
		required: "SKU is required",
		value:    func(in ProductInput) (any, bool) { return present(in.SKU) },
	},
	{
		rule: validator.Rule{Field: "price", Tags: "gte=0.01,lte=999999.99", Messages: map[string]string{
			"gte": "Price must be greater than 0",
			"lte": "Price must be less than 1,000,000",
		}},
		required: "Price is required",
		value:    func(in ProductInput) (any, bool) { return present(in.Price) },
	},
	{
		rule: validator.Rule{Field: "stockQuantity", Tags: stockTags, Messages: map[string]string{
			"integer": "Stock quantity must be a whole number",
			"gte":     "Stock quantity cannot be negative",
			"lte":     "Stock quantity is too large",
		}},
		required: "Stock quantity is required",
		value:    func(in ProductInput) (any, bool) { return present(in.StockQuantity) },
	},
	{
		rule: validator.Rule{Field: "category", Tags: "category", Messages: map[string]string{
			"category": "Please select a valid category",
		}},
		value: func(in ProductInput) (any, bool) { return present(in.Category) },
	},
	{
		rule: validator.Rule{Field: "images", Tags: "max=3,dive,url", Messages: map[string]string{
			"max": "You can add up to 3 images",
			"url": "Invalid image URL",
		}},
		value: func(in ProductInput) (any, bool) { return in.Images, in.Images != nil },
	},
	{
		rule: validator.Rule{Field: "brand", Tags: "max=50", Messages: map[string]string{
			"max": "Brand must be less than 50 characters",
		}},
		value: func(in ProductInput) (any, bool) { return present(in.Brand) },
	},
	{
		rule: validator.Rule{Field: "currency", Tags: "currency", Messages: map[string]string{
			"currency": "Please select a valid currency",
		}},
		value: func(in ProductInput) (any, bool) { return present(in.Currency) },
	},
}

var stockRule = validator.Rule{Field: "quantity", Tags: stockTags, Messages: map[string]string{
	"integer": "Quantity must be a whole number",
	"gte":     "Quantity cannot be negative",
	"lte":     "Quantity is too large",
}}

// normalize trims name and sku and drops blank image entries.
func normalize(in ProductInput) ProductInput {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		in.SKU = &sku
	}
	if in.Images != nil {
		images := make([]string, 0, len(in.Images))
		for _, url := range in.Images {
			if strings.TrimSpace(url) != "" {
				images = append(images, url)
			}
		}
		in.Images = images
	}
	return in
}

func check(in ProductInput, partial bool) error {
	var vs validator.Violations
	for _, f := range productFields {
		v, ok := f.value(in)
		if !ok {
			if !partial && f.required != "" {
				vs.Add(&validator.Violation{Field: f.rule.Field, Tag: "required", Message: f.required})
			}
			continue
		}
		vs.Add(f.rule.Check(v))
	}
	return vs.Err()
}

// CreateProduct validates a full product payload. Currency defaults to USD and
// images to an empty list.
func CreateProduct(in ProductInput) (domain.CreateProductRequest, error) {
	in = normalize(in)
	if in.Currency == nil {
		currency := domain.DefaultCurrency
		in.Currency = &currency
	}
	if in.Images == nil {
		in.Images = []string{}
	}

	if err := check(in, false); err != nil {
		return domain.CreateProductRequest{}, err
	}

	req := domain.CreateProductRequest{
		Name:          *in.Name,
		SKU:           *in.SKU,
		Price:         *in.Price,
		StockQuantity: int(*in.StockQuantity),
		Images:        in.Images,
		Currency:      *in.Currency,
	}
	if in.Description != nil {
		req.Description = *in.Description
	}
	if in.Category != nil {
		req.Category = *in.Category
	}
	if in.Brand != nil {
		req.Brand = *in.Brand
	}
	return req, nil
}

// UpdateProduct validates a partial payload. Only present fields are checked
// and carried into the request; absent fields stay nil.
func UpdateProduct(in ProductInput) (domain.UpdateProductRequest, error) {
	in = normalize(in)
	if err := check(in, true); err != nil {
		return domain.UpdateProductRequest{}, err
	}

	req := domain.UpdateProductRequest{
		Name:        in.Name,
		Description: in.Description,
		SKU:         in.SKU,
		Price:       in.Price,
		Category:    in.Category,
		Brand:       in.Brand,
		Currency:    in.Currency,
	}
	if in.StockQuantity != nil {
		q := int(*in.StockQuantity)
		req.StockQuantity = &q
	}
	if in.Images != nil {
		images := in.Images
		req.Images = &images
	}
	return req, nil
}

// StockUpdate validates a stock adjustment. The whole-number check runs before
// the sign check.
func StockUpdate(in StockInput) (domain.StockUpdate, error) {
	if in.Quantity == nil {
		return domain.StockUpdate{}, validator.Violations{{
			Field: stockRule.Field, Tag: "required", Message: "Quantity is required",
		}}.Err()
	}

	var vs validator.Violations
	vs.Add(stockRule.Check(*in.Quantity))
	if err := vs.Err(); err != nil {
		return domain.StockUpdate{}, err
	}
	return domain.StockUpdate{Quantity: int(math.Round(*in.Quantity))}, nil
}

// FromProduct builds a complete input from an existing product, for editing.
func FromProduct(p domain.Product) ProductInput {
	stock := float64(p.StockQuantity)
	images := append([]string{}, p.Images...)
	return ProductInput{
		Name:          &p.Name,
		Description:   &p.Description,
		SKU:           &p.SKU,
		Price:         &p.Price,
		StockQuantity: &stock,
		Category:      &p.Category,
		Images:        images,
		Brand:         &p.Brand,
		Currency:      &p.Currency,
	}
}
