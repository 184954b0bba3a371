package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// Pagination carries cursor metadata for any paginated collection.
type Pagination struct {
	Total   int    `json:"total"`
	Current string `json:"current"`
	First   string `json:"first"`
	Last    string `json:"last"`
	Prev    string `json:"prev"`
	Next    string `json:"next"`
}

// ProductSummary is the list-view projection of a product.
type ProductSummary struct {
	ID          uuid.UUID             `json:"id"`
	SellerID    uuid.UUID             `json:"seller_id"`
	Name        string                `json:"name"`
	Category    enums.ProductCategory `json:"category"`
	Price       decimal.Decimal       `json:"price"`
	SKU         string                `json:"sku"`
	Stock       int                   `json:"stock"`
	Sold        int                   `json:"sold"`
	Rating      decimal.Decimal       `json:"rating"`
	ReviewCount int                   `json:"review_count"`
	Sizes       []enums.ProductSize   `json:"sizes"`
	Images      []string              `json:"images"`
	IsActive    bool                  `json:"is_active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ProductDetail is the full product view including the description.
type ProductDetail struct {
	ProductSummary
	Description string `json:"description"`
}

// ProductsPageDTO returns a cursor-paginated product listing.
type ProductsPageDTO struct {
	Items      []ProductSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// ListFilter narrows a product listing.
type ListFilter struct {
	Category        *enums.ProductCategory
	SellerID        *uuid.UUID
	Search          string
	IncludeInactive bool
}

// CreateProductInput is the payload for registering a listing.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	SKU         string          `json:"sku" validate:"required,min=2,max=64"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Sizes       []string        `json:"sizes"`
	Images      []string        `json:"images" validate:"required,min=1,dive,url"`
}

// UpdateProductInput is the partial-update payload for a listing.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Sizes       []string         `json:"sizes"`
	Images      []string         `json:"images" validate:"omitempty,min=1,dive,url"`
	IsActive    *bool            `json:"is_active"`
}
