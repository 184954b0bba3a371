package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/enums"
	"github.com/vastralane/storefront-backend/pkg/types"
)

// Order is a placed checkout with frozen pricing and shipping snapshots.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'Processing'"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;not null;default:'pending'"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(10,2);not null"`
	ShippingFee     decimal.Decimal       `gorm:"column:shipping_fee;type:numeric(10,2);not null;default:0"`
	Discount        decimal.Decimal       `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(10,2);not null"`
	ShippingAddress types.AddressSnapshot `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	PaymentDetails  *types.PaymentDetails `gorm:"column:payment_details;type:jsonb;serializer:json"`
	GatewayOrderID  *string               `gorm:"column:gateway_order_id"`
	DeliveredAt     *time.Time            `gorm:"column:delivered_at"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the driver cannot generate one server-side.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
