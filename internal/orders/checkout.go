package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

// BuildOrderLines freezes cart lines into order items and computes the
// subtotal. Availability is validated per line before any stock moves.
func BuildOrderLines(items []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict, "a product in your cart is no longer available")
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart quantity must be positive")
		}
		if item.Product.Stock < item.Quantity {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("insufficient stock for %s", item.Product.Name))
		}

		imageURL := ""
		if len(item.Product.Images) > 0 {
			imageURL = item.Product.Images[0]
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			ImageURL:  imageURL,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return lines, subtotal, nil
}

// ApplyTransition moves an order to the next status, enforcing the
// fulfillment state machine. Delivery stamps the timestamp and settles
// cash-on-delivery orders. The caller restores stock on cancellation.
func ApplyTransition(order *models.Order, next enums.OrderStatus, now time.Time) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}
	if !order.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, next))
	}

	order.Status = next
	if next == enums.OrderStatusDelivered {
		deliveredAt := now
		order.DeliveredAt = &deliveredAt
		if order.PaymentMethod == enums.PaymentMethodCOD && order.PaymentStatus == enums.PaymentStatusPending {
			order.PaymentStatus = enums.PaymentStatusPaid
		}
	}
	return nil
}
