package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/internal/addresses"
	"github.com/vastralane/storefront-backend/internal/cart"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db/dbtest"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

type memoryIdempotencyStore struct {
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: map[string]string{}}
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type checkoutFixture struct {
	svc         Service
	cartRepo    *cart.Repository
	productRepo *catalog.Repository
	addressRepo *addresses.Repository
	store       *memoryIdempotencyStore
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	client := dbtest.Open(t)
	fixture := &checkoutFixture{
		cartRepo:    cart.NewRepository(client.DB()),
		productRepo: catalog.NewRepository(client.DB()),
		addressRepo: addresses.NewRepository(client.DB()),
		store:       newMemoryIdempotencyStore(),
	}

	svc, err := NewService(ServiceParams{
		OrderRepo:   NewRepository(client.DB()),
		CartRepo:    fixture.cartRepo,
		ProductRepo: fixture.productRepo,
		AddressRepo: fixture.addressRepo,
		DB:          client,
		Idempotency: fixture.store,
		Checkout: config.CheckoutConfig{
			FreeShippingThreshold: 999,
			FlatShippingFee:       99,
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	fixture.svc = svc
	return fixture
}

func (f *checkoutFixture) seedProduct(t *testing.T, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID: uuid.New(),
		Name:     "Block Print Saree",
		Category: enums.ProductCategoryWomen,
		Price:    decimal.RequireFromString(price),
		SKU:      "SAR-" + uuid.NewString()[:8],
		Stock:    stock,
		Sizes:    []enums.ProductSize{enums.ProductSizeM},
		IsActive: true,
	}
	if err := f.productRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *checkoutFixture) seedCartLine(t *testing.T, userID uuid.UUID, product *models.Product, quantity int) {
	t.Helper()
	line := &models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Size:      enums.ProductSizeM,
		Quantity:  quantity,
	}
	if err := f.cartRepo.Create(context.Background(), line); err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
}

func inlineAddress() *addresses.CreateAddressInput {
	return &addresses.CreateAddressInput{
		Name:         "home",
		FullName:     "Meera Pillai",
		Phone:        "9812345678",
		AddressLine1: "7 Marine Drive",
		City:         "Kochi",
		State:        "Kerala",
		PinCode:      "682001",
	}
}

func TestCheckoutWithInlineAddressSavesItForReuse(t *testing.T) {
	fixture := newCheckoutFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := fixture.seedProduct(t, "500.00", 5)
	fixture.seedCartLine(t, userID, product, 1)

	order, err := fixture.svc.Checkout(ctx, userID, "", CheckoutInput{
		Address:       inlineAddress(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if order.ShippingAddress.City != "Kochi" {
		t.Fatalf("expected inline address on order, got %+v", order.ShippingAddress)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(500)) || !order.ShippingFee.Equal(decimal.NewFromInt(99)) || !order.Total.Equal(decimal.NewFromInt(599)) {
		t.Fatalf("unexpected pricing: %+v", order)
	}

	saved, err := fixture.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if len(saved) != 1 || !saved[0].IsDefault {
		t.Fatalf("expected inline address saved as default, got %+v", saved)
	}

	reloaded, err := fixture.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 4 || reloaded.Sold != 1 {
		t.Fatalf("expected stock 4 / sold 1, got %d / %d", reloaded.Stock, reloaded.Sold)
	}

	remaining, err := fixture.cartRepo.ListItems(ctx, userID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cleared cart, got %d lines", len(remaining))
	}
}

func TestCheckoutWithSavedAddressEnforcesOwnership(t *testing.T) {
	fixture := newCheckoutFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := fixture.seedProduct(t, "1200.00", 3)
	fixture.seedCartLine(t, userID, product, 1)

	record := &models.Address{
		UserID:       userID,
		Name:         "office",
		FullName:     "Meera Pillai",
		Phone:        "9812345678",
		AddressLine1: "2nd Floor, Infopark",
		City:         "Kochi",
		State:        "Kerala",
		PinCode:      "682030",
	}
	if err := fixture.addressRepo.Create(ctx, record); err != nil {
		t.Fatalf("seed address: %v", err)
	}

	foreign := uuid.New()
	_, err := fixture.svc.Checkout(ctx, userID, "", CheckoutInput{
		AddressID:     &foreign,
		PaymentMethod: "cod",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown address, got %v", err)
	}

	order, err := fixture.svc.Checkout(ctx, userID, "", CheckoutInput{
		AddressID:     &record.ID,
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ShippingAddress.AddressLine1 != "2nd Floor, Infopark" {
		t.Fatalf("expected saved address snapshot, got %+v", order.ShippingAddress)
	}
	if !order.ShippingFee.IsZero() {
		t.Fatalf("expected free shipping above threshold, got %s", order.ShippingFee)
	}
}

func TestCheckoutFallsBackToDefaultAddress(t *testing.T) {
	fixture := newCheckoutFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := fixture.seedProduct(t, "750.00", 2)
	fixture.seedCartLine(t, userID, product, 1)

	_, err := fixture.svc.Checkout(ctx, userID, "", CheckoutInput{PaymentMethod: "cod"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without any address, got %v", err)
	}

	record := &models.Address{
		UserID:       userID,
		Name:         "home",
		FullName:     "Meera Pillai",
		Phone:        "9812345678",
		AddressLine1: "7 Marine Drive",
		City:         "Kochi",
		State:        "Kerala",
		PinCode:      "682001",
		IsDefault:    true,
	}
	if err := fixture.addressRepo.Create(ctx, record); err != nil {
		t.Fatalf("seed default address: %v", err)
	}

	order, err := fixture.svc.Checkout(ctx, userID, "", CheckoutInput{PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ShippingAddress.PinCode != "682001" {
		t.Fatalf("expected default address snapshot, got %+v", order.ShippingAddress)
	}
}

func TestCheckoutReplaysIdempotencyKey(t *testing.T) {
	fixture := newCheckoutFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := fixture.seedProduct(t, "500.00", 5)
	fixture.seedCartLine(t, userID, product, 1)

	first, err := fixture.svc.Checkout(ctx, userID, "retry-key", CheckoutInput{
		Address:       inlineAddress(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// The cart is now empty; only a replay can succeed here.
	second, err := fixture.svc.Checkout(ctx, userID, "retry-key", CheckoutInput{
		Address:       inlineAddress(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("replay checkout: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected replayed order %s, got %s", first.ID, second.ID)
	}

	reloaded, err := fixture.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 4 {
		t.Fatalf("replay must not reserve stock again, got stock %d", reloaded.Stock)
	}
}
