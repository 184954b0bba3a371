package addresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
)

// Repository encapsulates address-book persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an address repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByUser returns the buyer's address book, default first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var records []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&records).
		Error
	return records, err
}

// FindOwned loads an address only when the buyer owns it.
func (r *Repository) FindOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var record models.Address
	if err := r.db.WithContext(ctx).
		First(&record, "id = ? AND user_id = ?", addressID, userID).
		Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindDefault loads the buyer's default address if one exists.
func (r *Repository) FindDefault(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var record models.Address
	if err := r.db.WithContext(ctx).
		First(&record, "user_id = ? AND is_default = ?", userID, true).
		Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts the address.
func (r *Repository) Create(ctx context.Context, record *models.Address) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save persists all fields of an existing address.
func (r *Repository) Save(ctx context.Context, record *models.Address) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes the address row.
func (r *Repository) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{}).
		Error
}

// ClearDefault unsets the default flag on all of the buyer's addresses.
func (r *Repository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).
		Error
}

// MostRecent returns the newest remaining address for promote-on-delete.
func (r *Repository) MostRecent(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var record models.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&record).
		Error; err != nil {
		return nil, err
	}
	return &record, nil
}
