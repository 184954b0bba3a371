package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/enums"
)

// MonthlySales is the order volume and revenue bucketed by calendar month.
type MonthlySales struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CategorySales ranks a product category by lifetime sales value.
type CategorySales struct {
	Category enums.ProductCategory `json:"category"`
	Revenue  decimal.Decimal       `json:"revenue"`
}

// DashboardDTO is the admin overview of the storefront.
type DashboardDTO struct {
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	SalesByMonth  []MonthlySales  `json:"sales_by_month"`
	TopCategories []CategorySales `json:"top_categories"`
}
