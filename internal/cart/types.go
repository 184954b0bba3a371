package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// CartItemDTO is one line of the buyer's cart with live product data.
type CartItemDTO struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"product_id"`
	Name        string            `json:"name"`
	ImageURL    string            `json:"image_url"`
	Size        enums.ProductSize `json:"size,omitempty"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	LineTotal   decimal.Decimal   `json:"line_total"`
	Stock       int               `json:"stock"`
	IsAvailable bool              `json:"is_available"`
}

// CartDTO is the buyer's full cart plus its server-computed pricing.
type CartDTO struct {
	Items   []CartItemDTO `json:"items"`
	Pricing Quote         `json:"pricing"`
}

// AddItemInput adds a (product, size) line or bumps its quantity.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemInput replaces the quantity of an existing line. Quantity
// zero removes the line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// QuoteInput prices the current cart, optionally with a promo code.
type QuoteInput struct {
	PromoCode string `json:"promo_code"`
}
