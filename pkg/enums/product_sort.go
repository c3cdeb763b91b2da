package enums

import "fmt"

// ProductSort selects the ordering applied to catalog listings.
type ProductSort string

const (
	ProductSortPriceAsc  ProductSort = "price-asc"
	ProductSortPriceDesc ProductSort = "price-desc"
	ProductSortLastAdded ProductSort = "last-added"
)

var validProductSorts = []ProductSort{
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortLastAdded,
}

func (s ProductSort) String() string {
	return string(s)
}

func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort. Empty input maps to last-added.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortLastAdded, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
