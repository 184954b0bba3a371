package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db/dbtest"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

func newCartService(t *testing.T) (Service, *Repository, *catalog.Repository) {
	t.Helper()

	client := dbtest.Open(t)
	cartRepo := NewRepository(client.DB())
	productRepo := catalog.NewRepository(client.DB())

	svc, err := NewService(ServiceParams{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Checkout:    config.CheckoutConfig{FreeShippingThreshold: 999, FlatShippingFee: 99},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, cartRepo, productRepo
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	svc, cartRepo, productRepo := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{
		SellerID: uuid.New(),
		Name:     "Cotton Stole",
		Category: enums.ProductCategoryAccessories,
		Price:    decimal.NewFromInt(299),
		SKU:      "STO-COT-001",
		Stock:    4,
		IsActive: true,
	}
	if err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	line := &models.CartItem{UserID: userID, ProductID: product.ID, Quantity: 2}
	if err := cartRepo.Create(ctx, line); err != nil {
		t.Fatalf("seed cart line: %v", err)
	}

	dto, err := svc.UpdateItem(ctx, userID, line.ID, UpdateItemInput{Quantity: 0})
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart after zero-quantity update, got %d lines", len(dto.Items))
	}

	if _, err := svc.UpdateItem(ctx, userID, line.ID, UpdateItemInput{Quantity: 1}); err == nil {
		t.Fatal("expected not found for removed line")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestUpdateItemRejectsNegativeQuantity(t *testing.T) {
	svc, _, _ := newCartService(t)

	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), UpdateItemInput{Quantity: -1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveSizeRequiredWhenProductHasSizes(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		Category: enums.ProductCategoryMen,
		Sizes:    []enums.ProductSize{enums.ProductSizeM, enums.ProductSizeL},
	}

	_, err := resolveSize(product, "")
	if err == nil {
		t.Fatal("expected error when size omitted for sized product")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestResolveSizeAcceptsOfferedSize(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		Category: enums.ProductCategoryMen,
		Sizes:    []enums.ProductSize{enums.ProductSizeM, enums.ProductSizeL},
	}

	size, err := resolveSize(product, "M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != enums.ProductSizeM {
		t.Fatalf("expected size M, got %s", size)
	}
}

func TestResolveSizeRejectsUnofferedSize(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		Category: enums.ProductCategoryMen,
		Sizes:    []enums.ProductSize{enums.ProductSizeM},
	}

	if _, err := resolveSize(product, "XL"); err == nil {
		t.Fatal("expected error for size the product does not offer")
	}
}

func TestResolveSizeOptionalForAccessories(t *testing.T) {
	t.Parallel()

	product := &models.Product{
		Category: enums.ProductCategoryAccessories,
		Price:    decimal.NewFromInt(499),
	}

	size, err := resolveSize(product, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != "" {
		t.Fatalf("expected empty size, got %s", size)
	}
}
