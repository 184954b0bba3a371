package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/pagination"
)

// Repository encapsulates product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided gorm DB.
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

// Create inserts the product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists all fields of an existing product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&models.Product{}).
		Error
}

// FindByID loads a product by primary key.
func (r *Repository) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns a cursor-paginated product page honoring the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, cursor string, limit int) (ProductsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return ProductsPageDTO{}, err
	}

	query := r.filteredQuery(ctx, filter)
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Product
	if err := query.Find(&records).Error; err != nil {
		return ProductsPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]ProductSummary, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, summaryFromModel(&record))
	}

	totalCount, err := r.count(ctx, filter)
	if err != nil {
		return ProductsPageDTO{}, err
	}
	firstCursor, err := r.boundaryCursor(ctx, filter, true)
	if err != nil {
		return ProductsPageDTO{}, err
	}
	lastCursor, err := r.boundaryCursor(ctx, filter, false)
	if err != nil {
		return ProductsPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return ProductsPageDTO{
		Items: items,
		Pagination: Pagination{
			Total:   int(totalCount),
			Current: cursorValue,
			First:   firstCursor,
			Last:    lastCursor,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

// DecrementStock atomically reserves stock and bumps the sold counter.
// Returns gorm.ErrRecordNotFound when the product lacks sufficient stock.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]any{
			"stock": gorm.Expr("stock - ?", quantity),
			"sold":  gorm.Expr("sold + ?", quantity),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestoreStock returns reserved stock after a cancellation.
func (r *Repository) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock": gorm.Expr("stock + ?", quantity),
			"sold":  gorm.Expr("GREATEST(sold - ?, 0)", quantity),
		}).Error
}

// ApplyReviewAggregate stamps the recomputed rating mean and count.
func (r *Repository) ApplyReviewAggregate(ctx context.Context, productID uuid.UUID, rating decimal.Decimal, reviewCount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"rating":       rating,
			"review_count": reviewCount,
		}).Error
}

func (r *Repository) filteredQuery(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *Repository) count(ctx context.Context, filter ListFilter) (int64, error) {
	var count int64
	if err := r.filteredQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) boundaryCursor(ctx context.Context, filter ListFilter, ascending bool) (string, error) {
	order := "created_at DESC, id DESC"
	if ascending {
		order = "created_at ASC, id ASC"
	}

	var row struct {
		CreatedAt time.Time
		ID        uuid.UUID
	}

	query := r.filteredQuery(ctx, filter).
		Select("created_at", "id").
		Order(order).
		Limit(1)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: row.CreatedAt,
		ID:        row.ID,
	}), nil
}

func summaryFromModel(product *models.Product) ProductSummary {
	return ProductSummary{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		SKU:         product.SKU,
		Stock:       product.Stock,
		Sold:        product.Sold,
		Rating:      product.Rating,
		ReviewCount: product.ReviewCount,
		Sizes:       product.Sizes,
		Images:      product.Images,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func detailFromModel(product *models.Product) ProductDetail {
	return ProductDetail{
		ProductSummary: summaryFromModel(product),
		Description:    product.Description,
	}
}
