package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the admin dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reporting repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountUsers returns the total registered user count.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountProducts returns the total product count.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// CountOrders returns the total order count.
func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// Revenue sums the totals of settled orders.
func (r *Repository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&row).
		Error
	return row.Revenue, err
}

// SalesByMonth buckets orders placed since the given time by calendar month.
func (r *Repository) SalesByMonth(ctx context.Context, since time.Time) ([]MonthlySales, error) {
	var rows []MonthlySales
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"EXTRACT(YEAR FROM created_at)::int AS year",
			"EXTRACT(MONTH FROM created_at)::int AS month",
			"COUNT(*) AS orders",
			"COALESCE(SUM(total), 0) AS revenue",
		).
		Where("created_at >= ?", since).
		Where("status <> ?", enums.OrderStatusCancelled).
		Group("1, 2").
		Order("1 ASC, 2 ASC").
		Scan(&rows).
		Error
	return rows, err
}

// TopCategories ranks product categories by lifetime sales value.
func (r *Repository) TopCategories(ctx context.Context, limit int) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category", "COALESCE(SUM(price * sold), 0) AS revenue").
		Group("category").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).
		Error
	return rows, err
}
