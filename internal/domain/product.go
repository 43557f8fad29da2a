package domain

import "fmt"

// Category is the closed set of product categories.
type Category string

const (
	CategoryCleaning   Category = "cleaning"
	CategoryTechnology Category = "technology"
	CategoryMusic      Category = "music"
	CategoryClothing   Category = "clothing"
	CategoryFootwear   Category = "footwear"
	CategoryOther      Category = "other"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryCleaning,
	CategoryTechnology,
	CategoryMusic,
	CategoryClothing,
	CategoryFootwear,
	CategoryOther,
}

// ParseCategory converts an API string into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("unknown category %q, must be one of: cleaning, technology, music, clothing, footwear, other", s),
	}
}

// Product is an immutable catalog entry.
type Product struct {
	ID          uint64
	Name        string
	Description string
	Category    Category
}
