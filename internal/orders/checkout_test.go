package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

func cartLine(name string, price string, quantity, stock int) models.CartItem {
	return models.CartItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  quantity,
		Size:      enums.ProductSizeM,
		Product: &models.Product{
			ID:       uuid.New(),
			Name:     name,
			Price:    decimal.RequireFromString(price),
			Stock:    stock,
			IsActive: true,
			Images:   []string{"https://cdn.example.com/" + name + ".jpg"},
		},
	}
}

func TestBuildOrderLinesSnapshotsCart(t *testing.T) {
	items := []models.CartItem{
		cartLine("kurta", "499.00", 2, 10),
		cartLine("saree", "1299.50", 1, 3),
	}

	lines, subtotal, err := BuildOrderLines(items)
	if err != nil {
		t.Fatalf("BuildOrderLines returned error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !lines[0].LineTotal.Equal(decimal.RequireFromString("998.00")) {
		t.Errorf("first line total = %s, want 998.00", lines[0].LineTotal)
	}
	if !subtotal.Equal(decimal.RequireFromString("2297.50")) {
		t.Errorf("subtotal = %s, want 2297.50", subtotal)
	}
	if lines[0].Name != "kurta" || lines[0].ImageURL == "" {
		t.Errorf("line snapshot missing product data: %+v", lines[0])
	}
}

func TestBuildOrderLinesEmptyCart(t *testing.T) {
	_, _, err := BuildOrderLines(nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestBuildOrderLinesInsufficientStock(t *testing.T) {
	items := []models.CartItem{cartLine("kurta", "499.00", 5, 2)}
	_, _, err := BuildOrderLines(items)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error for short stock, got %v", err)
	}
}

func TestBuildOrderLinesInactiveProduct(t *testing.T) {
	item := cartLine("kurta", "499.00", 1, 10)
	item.Product.IsActive = false
	_, _, err := BuildOrderLines([]models.CartItem{item})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error for inactive product, got %v", err)
	}
}

func TestApplyTransitionHappyPath(t *testing.T) {
	order := &models.Order{
		Status:        enums.OrderStatusProcessing,
		PaymentMethod: enums.PaymentMethodCard,
		PaymentStatus: enums.PaymentStatusPaid,
	}
	path := []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusShipped,
		enums.OrderStatusInTransit,
		enums.OrderStatusDelivered,
	}
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	for _, next := range path {
		if err := ApplyTransition(order, next, now); err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}
	if order.DeliveredAt == nil || !order.DeliveredAt.Equal(now) {
		t.Errorf("delivery timestamp not stamped: %v", order.DeliveredAt)
	}
}

func TestApplyTransitionDeliverySettlesCOD(t *testing.T) {
	order := &models.Order{
		Status:        enums.OrderStatusInTransit,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := ApplyTransition(order, enums.OrderStatusDelivered, time.Now()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", order.PaymentStatus)
	}
}

func TestApplyTransitionRejectsSkips(t *testing.T) {
	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusProcessing, enums.OrderStatusDelivered},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
		{enums.OrderStatusShipped, enums.OrderStatusConfirmed},
	}
	for _, tc := range cases {
		order := &models.Order{Status: tc.from}
		err := ApplyTransition(order, tc.to, time.Now())
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Errorf("%s -> %s: expected state conflict, got %v", tc.from, tc.to, err)
		}
		if order.Status != tc.from {
			t.Errorf("%s -> %s: order mutated on rejected transition", tc.from, tc.to)
		}
	}
}

func TestApplyTransitionCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusProcessing,
		enums.OrderStatusConfirmed,
		enums.OrderStatusShipped,
		enums.OrderStatusInTransit,
	} {
		order := &models.Order{Status: from}
		if err := ApplyTransition(order, enums.OrderStatusCancelled, time.Now()); err != nil {
			t.Errorf("%s -> Cancelled: unexpected error %v", from, err)
		}
	}
}
