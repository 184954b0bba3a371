package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry. Duplicates surface as unique violations.
func (r *Repository) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Create(&models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}).Error
}

// RemoveItem deletes the user-product entry if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListItems returns a paginated list of wishlisted products for a user.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishlistPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return WishlistPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Preload("Product").
		Where("user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.WishlistItem
	if err := query.Find(&records).Error; err != nil {
		return WishlistPageDTO{}, err
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

	items := make([]WishlistItemDTO, 0, len(resultRows))
	for _, record := range resultRows {
		dto := WishlistItemDTO{CreatedAt: record.CreatedAt}
		if record.Product != nil {
			dto.Product = summaryFromProduct(record.Product)
		}
		items = append(items, dto)
	}

	totalCount, err := r.count(ctx, userID)
	if err != nil {
		return WishlistPageDTO{}, err
	}
	firstCursor, err := r.boundaryCursor(ctx, userID, true)
	if err != nil {
		return WishlistPageDTO{}, err
	}
	lastCursor, err := r.boundaryCursor(ctx, userID, false)
	if err != nil {
		return WishlistPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return WishlistPageDTO{
		Items: items,
		Pagination: catalog.Pagination{
			Total:   int(totalCount),
			Current: cursorValue,
			First:   firstCursor,
			Last:    lastCursor,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

// ListItemIDs returns every product ID the user has wishlisted.
func (r *Repository) ListItemIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_id", &ids).
		Error
	return ids, err
}

func (r *Repository) count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) boundaryCursor(ctx context.Context, userID uuid.UUID, ascending bool) (string, error) {
	order := "created_at DESC, id DESC"
	if ascending {
		order = "created_at ASC, id ASC"
	}

	var row struct {
		CreatedAt time.Time
		ID        uuid.UUID
	}

	query := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Select("created_at", "id").
		Where("user_id = ?", userID).
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

func summaryFromProduct(product *models.Product) catalog.ProductSummary {
	return catalog.ProductSummary{
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
