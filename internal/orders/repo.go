package orders

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

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
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

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Delete removes the order row; items cascade with it.
func (r *Repository) Delete(ctx context.Context, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", orderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Save persists all fields of an existing order.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// FindByID loads an order with its items by primary key.
func (r *Repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).
		Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOwned loads an order only when the buyer owns it.
func (r *Repository) FindOwned(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).
		Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByGatewayOrderID locates the order a gateway callback refers to.
func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "gateway_order_id = ?", gatewayOrderID).
		Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a cursor-paginated order page honoring the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, cursor string, limit int) (OrdersPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	cursorValue := strings.TrimSpace(cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return OrdersPageDTO{}, err
	}

	query := r.filteredQuery(ctx, filter).Preload("Items")
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Order
	if err := query.Find(&records).Error; err != nil {
		return OrdersPageDTO{}, err
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

	items := make([]OrderDTO, 0, len(resultRows))
	for _, record := range resultRows {
		items = append(items, dtoFromModel(&record))
	}

	totalCount, err := r.count(ctx, filter)
	if err != nil {
		return OrdersPageDTO{}, err
	}
	firstCursor, err := r.boundaryCursor(ctx, filter, true)
	if err != nil {
		return OrdersPageDTO{}, err
	}
	lastCursor, err := r.boundaryCursor(ctx, filter, false)
	if err != nil {
		return OrdersPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return OrdersPageDTO{
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

func (r *Repository) filteredQuery(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
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

func dtoFromModel(order *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Subtotal:        order.Subtotal,
		ShippingFee:     order.ShippingFee,
		Discount:        order.Discount,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
		GatewayOrderID:  order.GatewayOrderID,
		Items:           items,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
