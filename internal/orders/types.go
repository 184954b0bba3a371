package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/internal/addresses"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/enums"
	"github.com/vastralane/storefront-backend/pkg/types"
)

// OrderItemDTO is one frozen line of a placed order.
type OrderItemDTO struct {
	ID        uuid.UUID         `json:"id"`
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	ImageURL  string            `json:"image_url,omitempty"`
	Size      enums.ProductSize `json:"size,omitempty"`
	Quantity  int               `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	LineTotal decimal.Decimal   `json:"line_total"`
}

// OrderDTO is the buyer- and admin-facing projection of an order.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"user_id"`
	Status          enums.OrderStatus     `json:"status"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus   `json:"payment_status"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	ShippingFee     decimal.Decimal       `json:"shipping_fee"`
	Discount        decimal.Decimal       `json:"discount"`
	Total           decimal.Decimal       `json:"total"`
	ShippingAddress types.AddressSnapshot `json:"shipping_address"`
	GatewayOrderID  *string               `json:"gateway_order_id,omitempty"`
	Items           []OrderItemDTO        `json:"items"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrdersPageDTO is a cursor-paginated order listing.
type OrdersPageDTO struct {
	Items      []OrderDTO         `json:"items"`
	Pagination catalog.Pagination `json:"pagination"`
}

// CheckoutInput places an order from the buyer's current cart. The shipping
// destination is a saved address id, an inline address (saved to the address
// book for reuse), or the buyer's default when both are omitted.
type CheckoutInput struct {
	AddressID     *uuid.UUID                    `json:"address_id"`
	Address       *addresses.CreateAddressInput `json:"address"`
	PaymentMethod string                        `json:"payment_method" validate:"required"`
	PromoCode     string                        `json:"promo_code"`
}

// UpdateStatusInput moves an order along its fulfillment states.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
}
