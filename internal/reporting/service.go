package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

const (
	salesWindowMonths = 6
	topCategoryLimit  = 4
)

// ServiceParams groups dependencies for the reporting service.
type ServiceParams struct {
	Repo *Repository
}

// Service assembles the admin dashboard.
type Service interface {
	Dashboard(ctx context.Context) (DashboardDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a reporting service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reporting repo is required")
	}
	return &service{repo: params.Repo, now: time.Now}, nil
}

// Dashboard gathers storefront counts, settled revenue, the monthly sales
// window, and the top-selling categories.
func (s *service) Dashboard(ctx context.Context) (DashboardDTO, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}

	since := monthWindowStart(s.now(), salesWindowMonths)
	sales, err := s.repo.SalesByMonth(ctx, since)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales by month")
	}
	categories, err := s.repo.TopCategories(ctx, topCategoryLimit)
	if err != nil {
		return DashboardDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top categories")
	}

	return DashboardDTO{
		TotalUsers:    users,
		TotalProducts: products,
		TotalOrders:   orders,
		Revenue:       revenue,
		SalesByMonth:  fillMonths(since, s.now(), sales),
		TopCategories: categories,
	}, nil
}

// monthWindowStart returns the first instant of the month n-1 months before
// now, so the window includes the current month.
func monthWindowStart(now time.Time, months int) time.Time {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, -(months - 1), 0)
}

// fillMonths pads the queried buckets so every month in the window is
// present, with zeros where nothing sold.
func fillMonths(since, now time.Time, rows []MonthlySales) []MonthlySales {
	byMonth := make(map[[2]int]MonthlySales, len(rows))
	for _, row := range rows {
		byMonth[[2]int{row.Year, row.Month}] = row
	}

	var filled []MonthlySales
	for cursor := since; !cursor.After(now); cursor = cursor.AddDate(0, 1, 0) {
		key := [2]int{cursor.Year(), int(cursor.Month())}
		if row, ok := byMonth[key]; ok {
			filled = append(filled, row)
			continue
		}
		filled = append(filled, MonthlySales{
			Year:    cursor.Year(),
			Month:   int(cursor.Month()),
			Revenue: decimal.Zero,
		})
	}
	return filled
}
