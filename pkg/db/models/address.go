package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/types"
)

// Address is a saved shipping destination in a buyer's address book.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Name         string    `gorm:"column:name;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Phone        string    `gorm:"column:phone;not null"`
	AddressLine1 string    `gorm:"column:address_line1;not null"`
	AddressLine2 string    `gorm:"column:address_line2;not null;default:''"`
	City         string    `gorm:"column:city;not null"`
	State        string    `gorm:"column:state;not null"`
	PinCode      string    `gorm:"column:pin_code;not null"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the driver cannot generate one server-side.
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Snapshot freezes the address into the form stored on an order.
func (a *Address) Snapshot() types.AddressSnapshot {
	return types.AddressSnapshot{
		Name:         a.Name,
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PinCode:      a.PinCode,
	}
}
