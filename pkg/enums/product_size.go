package enums

import "fmt"

// ProductSize is a size option a product can be sold in. Which sizes are
// allowed depends on the category.
type ProductSize string

const (
	ProductSizeXS  ProductSize = "XS"
	ProductSizeS   ProductSize = "S"
	ProductSizeM   ProductSize = "M"
	ProductSizeL   ProductSize = "L"
	ProductSizeXL  ProductSize = "XL"
	ProductSizeXXL ProductSize = "XXL"
	ProductSize46Y ProductSize = "4-6Y"
	ProductSize68Y ProductSize = "6-8Y"
	ProductSize810 ProductSize = "8-10Y"
)

var validProductSizes = []ProductSize{
	ProductSizeXS,
	ProductSizeS,
	ProductSizeM,
	ProductSizeL,
	ProductSizeXL,
	ProductSizeXXL,
	ProductSize46Y,
	ProductSize68Y,
	ProductSize810,
}

var sizesByCategory = map[ProductCategory][]ProductSize{
	ProductCategoryMen:   {ProductSizeXS, ProductSizeS, ProductSizeM, ProductSizeL, ProductSizeXL, ProductSizeXXL},
	ProductCategoryWomen: {ProductSizeXS, ProductSizeS, ProductSizeM, ProductSizeL, ProductSizeXL, ProductSizeXXL},
	ProductCategoryKids:  {ProductSize46Y, ProductSize68Y, ProductSize810},
	// accessories are one-size; no options.
	ProductCategoryAccessories: {},
}

// String implements fmt.Stringer.
func (p ProductSize) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductSize.
func (p ProductSize) IsValid() bool {
	for _, candidate := range validProductSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// AllowedForCategory reports whether the size may be offered in the category.
func (p ProductSize) AllowedForCategory(category ProductCategory) bool {
	for _, candidate := range sizesByCategory[category] {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductSize converts raw input into a ProductSize.
func ParseProductSize(value string) (ProductSize, error) {
	for _, candidate := range validProductSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product size %q", value)
}
