package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
)

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided gorm DB.
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

// ListByProduct returns all reviews for a product, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var records []models.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&records).
		Error
	return records, err
}

// FindByID loads a review by primary key.
func (r *Repository) FindByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	var record models.Review
	if err := r.db.WithContext(ctx).First(&record, "id = ?", reviewID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts the review.
func (r *Repository) Create(ctx context.Context, record *models.Review) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save persists all fields of an existing review.
func (r *Repository) Save(ctx context.Context, record *models.Review) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes the review row.
func (r *Repository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		Delete(&models.Review{}).
		Error
}

// Aggregate computes the rating sum and count for a product.
func (r *Repository) Aggregate(ctx context.Context, productID uuid.UUID) (sum int64, count int64, err error) {
	var row struct {
		Sum   int64
		Count int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) AS sum", "COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).
		Error
	return row.Sum, row.Count, err
}
