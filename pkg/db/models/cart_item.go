package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// CartItem is one (product, size) line in a buyer's server-side cart.
type CartItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_cart_items_user_product_size"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_cart_items_user_product_size"`
	Size      enums.ProductSize `gorm:"column:size;not null;default:'';uniqueIndex:uq_cart_items_user_product_size"`
	Quantity  int               `gorm:"column:quantity;not null"`
	Product   *Product          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the driver cannot generate one server-side.
func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
