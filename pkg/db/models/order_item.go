package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// OrderItem captures the snapshot of each line within an order.
type OrderItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Name      string            `gorm:"column:name;not null"`
	ImageURL  string            `gorm:"column:image_url;not null;default:''"`
	Size      enums.ProductSize `gorm:"column:size;not null;default:''"`
	Quantity  int               `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal decimal.Decimal   `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an ID when the driver cannot generate one server-side.
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
