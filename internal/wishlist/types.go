package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastralane/storefront-backend/internal/catalog"
)

// WishlistItemDTO wraps the product summary included in a wishlist row.
type WishlistItemDTO struct {
	Product   catalog.ProductSummary `json:"product"`
	CreatedAt time.Time              `json:"created_at"`
}

// WishlistPageDTO returns a cursor-paginated wishlist view.
type WishlistPageDTO struct {
	Items      []WishlistItemDTO  `json:"items"`
	Pagination catalog.Pagination `json:"pagination"`
}

// AddItemInput adds a product to the wishlist.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}
