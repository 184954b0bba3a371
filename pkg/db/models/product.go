package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// Product represents a seller's catalog listing.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	Category    enums.ProductCategory `gorm:"column:category;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	SKU         string                `gorm:"column:sku;not null;uniqueIndex"`
	Stock       int                   `gorm:"column:stock;not null;default:0"`
	Sold        int                   `gorm:"column:sold;not null;default:0"`
	Rating      decimal.Decimal       `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount int                   `gorm:"column:review_count;not null;default:0"`
	Sizes       []enums.ProductSize   `gorm:"column:sizes;type:jsonb;serializer:json"`
	Images      []string              `gorm:"column:images;type:jsonb;serializer:json"`
	IsActive    bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the driver cannot generate one server-side.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
