package domain

import "github.com/utafrali/productconsole/pkg/slug"

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Currencies lists the supported price currencies.
var Currencies = []Option{
	{Value: "USD", Label: "USD - US Dollar"},
	{Value: "EUR", Label: "EUR - Euro"},
	{Value: "INR", Label: "INR - Indian Rupee"},
	{Value: "RUB", Label: "RUB - Russian Ruble"},
}

// Categories lists the product categories in display order.
var Categories = []Option{
	{Value: "electronics", Label: "Electronics"},
	{Value: "clothing", Label: "Clothing & Accessories"},
	{Value: "home-garden", Label: "Home & Garden"},
	{Value: "sports", Label: "Sports & Outdoors"},
	{Value: "books", Label: "Books & Media"},
	{Value: "beauty", Label: "Beauty & Personal Care"},
	{Value: "toys", Label: "Toys & Games"},
	{Value: "automotive", Label: "Automotive"},
	{Value: "health", Label: "Health & Wellness"},
	{Value: "food", Label: "Food & Beverages"},
	{Value: "office", Label: "Office Supplies"},
	{Value: "jewelry", Label: "Jewelry & Watches"},
	{Value: "furniture", Label: "Furniture"},
	{Value: "baby", Label: "Baby & Kids"},
	{Value: "pet", Label: "Pet Supplies"},
	{Value: "art", Label: "Arts & Crafts"},
	{Value: "music", Label: "Musical Instruments"},
	{Value: "travel", Label: "Travel & Luggage"},
	{Value: "tools", Label: "Tools & Hardware"},
	{Value: "other", Label: "Other"},
}

func findOption(opts []Option, value string) (Option, bool) {
	for _, o := range opts {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// IsValidCurrency checks whether code is a supported currency. The match is
// case-sensitive.
func IsValidCurrency(code string) bool {
	_, ok := findOption(Currencies, code)
	return ok
}

// IsValidCategory checks whether slug is a known category.
func IsValidCategory(slug string) bool {
	_, ok := findOption(Categories, slug)
	return ok
}

// CategoryLabel returns the display label for slug, or slug itself when it is
// not a known category.
func CategoryLabel(slug string) string {
	if o, ok := findOption(Categories, slug); ok {
		return o.Label
	}
	return slug
}

// ResolveCategory maps a slug or a display label, in any case, to its category
// slug. Input that matches no category is returned in slug form.
func ResolveCategory(input string) string {
	key := slug.Generate(input)
	for _, o := range Categories {
		if o.Value == key || slug.Generate(o.Label) == key {
			return o.Value
		}
	}
	return key
}
