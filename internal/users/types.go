package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/enums"
)

// UserDTO is the admin-facing projection of an account.
type UserDTO struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       enums.UserRole `json:"role"`
	IsActive   bool           `json:"is_active"`
	OrderCount int            `json:"order_count"`
	CreatedAt  time.Time      `json:"created_at"`
}

// UsersPageDTO returns a cursor-paginated account listing.
type UsersPageDTO struct {
	Items      []UserDTO          `json:"items"`
	Pagination catalog.Pagination `json:"pagination"`
}

// UpdateRoleInput changes an account's role.
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// SetActiveInput enables or disables an account.
type SetActiveInput struct {
	IsActive bool `json:"is_active"`
}
