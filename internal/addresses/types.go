package addresses

import (
	"time"

	"github.com/google/uuid"
)

// AddressDTO is the buyer-facing projection of a saved address.
type AddressDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PinCode      string    `json:"pin_code"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateAddressInput is the payload for saving a new address.
type CreateAddressInput struct {
	Name         string `json:"name" validate:"required,max=60"`
	FullName     string `json:"full_name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,min=8,max=20"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"required,max=80"`
	State        string `json:"state" validate:"required,max=80"`
	PinCode      string `json:"pin_code" validate:"required,len=6,numeric"`
	IsDefault    bool   `json:"is_default"`
}

// UpdateAddressInput is the partial-update payload for an address.
type UpdateAddressInput struct {
	Name         *string `json:"name" validate:"omitempty,max=60"`
	FullName     *string `json:"full_name" validate:"omitempty,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,min=8,max=20"`
	AddressLine1 *string `json:"address_line1" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2" validate:"omitempty,max=200"`
	City         *string `json:"city" validate:"omitempty,max=80"`
	State        *string `json:"state" validate:"omitempty,max=80"`
	PinCode      *string `json:"pin_code" validate:"omitempty,len=6,numeric"`
	IsDefault    *bool   `json:"is_default"`
}
